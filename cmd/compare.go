package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/pipeline"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <performer-uuid>",
	Short: "Find reference scenes missing from the local library",
	Long: `Fetches a performer's scenes from both the local library and the reference
catalog, matches them by cross-reference ID or by normalized title and date,
and prints the scenes that exist in the reference catalog but not locally.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		performerID := args[0]
		if !utils.LooksLikeUUID(performerID) {
			return fmt.Errorf("expected a reference performer UUID, got %q", performerID)
		}

		cfg, cleanup, err := buildPipelineConfig(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		if closeLog, err := utils.AttachActionLog(cfg.SnapshotRoot); err == nil {
			defer closeLog()
		}

		outcome, err := pipeline.Compare(cmd.Context(), cfg, performerID)
		if err != nil {
			return err
		}

		outputFlags, delimiter := outputOptions()
		for _, s := range outcome.Result.Missing {
			fmt.Println(sceneLine(s, outputFlags, delimiter))
		}
		stats := outcome.Result.Stats
		utils.Log.Infof("%d reference scenes: %d exact, %d fuzzy, %d missing",
			stats.ReferenceCount, stats.ExactMatches, stats.FuzzyMatches, stats.MissingCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
