package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/pipeline"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline <performer-uuid>",
	Short: "Run compare and queue back to back for one performer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		performerID := args[0]
		if !utils.LooksLikeUUID(performerID) {
			return fmt.Errorf("expected a reference performer UUID, got %q", performerID)
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, cleanup, err := buildPipelineConfig(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if closeLog, err := utils.AttachActionLog(cfg.SnapshotRoot); err == nil {
			defer closeLog()
		}

		compared, err := pipeline.Compare(cmd.Context(), cfg, performerID)
		if err != nil {
			return err
		}
		if compared.Result.Stats.MissingCount == 0 {
			utils.Log.Info("nothing missing; skipping queue step")
			return nil
		}

		outcome, err := pipeline.QueueMissing(cmd.Context(), cfg, performerID, pipeline.QueueOptions{
			DryRun:       dryRun,
			LookbackDays: viper.GetInt("whisparr.lookbackdays"),
		})
		if err != nil {
			return err
		}
		fmt.Printf("missing=%d queued=%d noSeries=%d noEpisode=%d skippedOld=%d\n",
			outcome.TotalMissing, outcome.Queued, outcome.SeriesNotFound,
			outcome.EpisodeNotFound, outcome.SkippedOld)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)

	pipelineCmd.Flags().BoolP("dry-run", "n", false, "Compare only; do not submit search commands")
}
