package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stashkit/scenematch/pkg/stash"
	"github.com/stashkit/scenematch/pkg/storage"
)

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite performers and when they were last processed",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := stash.NewClient(viper.GetString("stash.url"), viper.GetString("stash.apikey"))
		performers, err := client.FavoritePerformers()
		if err != nil {
			return err
		}
		sort.Slice(performers, func(i, j int) bool {
			return strings.ToLower(performers[i].Name) < strings.ToLower(performers[j].Name)
		})

		db, err := storage.Open(viper.GetString("dbpath"))
		if err != nil {
			return err
		}
		defer db.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCROSS-REF\tLAST QUEUED")
		for _, p := range performers {
			lastRun := "never"
			if p.CrossRefID != "" {
				if t, ok, err := db.LastRun(cmd.Context(), p.CrossRefID); err == nil && ok {
					lastRun = t.Format("2006-01-02")
				}
			}
			crossRef := p.CrossRefID
			if crossRef == "" {
				crossRef = "(unlinked)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, crossRef, lastRun)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
}
