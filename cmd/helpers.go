package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/pipeline"
	"github.com/stashkit/scenematch/pkg/stash"
	"github.com/stashkit/scenematch/pkg/stashdb"
	"github.com/stashkit/scenematch/pkg/storage"
	"github.com/stashkit/scenematch/pkg/whisparr"
)

// runDir resolves the artifact root: flag first, config second.
func runDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("rundir"); dir != "" {
		return dir
	}
	return viper.GetString("rundir")
}

// buildPipelineConfig assembles the collaborators from config. The sqlite
// history DB is opened only when withDB is set; callers must Close it.
func buildPipelineConfig(cmd *cobra.Command, withDB bool) (pipeline.Config, func(), error) {
	delay := time.Duration(viper.GetFloat64("http.delayseconds") * float64(time.Second))
	cfg := pipeline.Config{
		Stash:        stash.NewClient(viper.GetString("stash.url"), viper.GetString("stash.apikey")),
		StashDB:      stashdb.NewClient(viper.GetString("stashdb.url"), viper.GetString("stashdb.apikey")),
		Whisparr:     whisparr.NewClient(viper.GetString("whisparr.url"), viper.GetString("whisparr.apikey"), delay),
		SnapshotRoot: runDir(cmd),
		Log:          utils.Log,
	}
	cleanup := func() {}
	if withDB {
		db, err := storage.Open(viper.GetString("dbpath"))
		if err != nil {
			return cfg, cleanup, err
		}
		cfg.DB = db
		cleanup = func() { db.Close() }
	}
	return cfg, cleanup, nil
}

// sceneLine renders one scene according to the -o/--output flags:
// i=id, t=title, d=date, s=studio.
func sceneLine(s match.Scene, outputFlags, delimiter string) string {
	var fields []string
	for _, f := range outputFlags {
		switch f {
		case 'i':
			fields = append(fields, s.ID)
		case 't':
			if s.Title != nil {
				fields = append(fields, *s.Title)
			} else {
				fields = append(fields, "")
			}
		case 'd':
			if s.Date != nil {
				fields = append(fields, s.Date.Format("2006-01-02"))
			} else {
				fields = append(fields, "")
			}
		case 's':
			if s.Studio != nil {
				fields = append(fields, *s.Studio)
			} else {
				fields = append(fields, "")
			}
		}
	}
	return strings.Join(fields, delimiter)
}

func outputOptions() (string, string) {
	outputFlags, _ := rootCmd.PersistentFlags().GetString("output")
	delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")
	return outputFlags, delimiter
}
