package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/pipeline"
)

// queueCmd represents the queue command
var queueCmd = &cobra.Command{
	Use:   "queue <performer-uuid>",
	Short: "Queue acquisition searches for a performer's missing scenes",
	Long: `Reads the missing report produced by compare and submits a backend search
for each scene, matching it to the backend's series (by studio) and episode
(by title and release date). Attempt history in sqlite prevents re-searching
scenes already tried before the lookback cutoff.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		performerID := args[0]
		if !utils.LooksLikeUUID(performerID) {
			return fmt.Errorf("expected a reference performer UUID, got %q", performerID)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		random, _ := cmd.Flags().GetInt("random")
		seed, _ := cmd.Flags().GetInt64("seed")
		full, _ := cmd.Flags().GetBool("full")
		lookback, _ := cmd.Flags().GetInt("lookback-days")
		if lookback <= 0 {
			lookback = viper.GetInt("whisparr.lookbackdays")
		}

		cfg, cleanup, err := buildPipelineConfig(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if closeLog, err := utils.AttachActionLog(cfg.SnapshotRoot); err == nil {
			defer closeLog()
		}

		outcome, err := pipeline.QueueMissing(cmd.Context(), cfg, performerID, pipeline.QueueOptions{
			DryRun:       dryRun,
			Limit:        limit,
			Random:       random,
			Seed:         seed,
			Full:         full,
			LookbackDays: lookback,
		})
		if err != nil {
			return err
		}
		fmt.Printf("missing=%d processed=%d queued=%d noSeries=%d noEpisode=%d skippedOld=%d failedOld=%d\n",
			outcome.TotalMissing, outcome.Processed, outcome.Queued,
			outcome.SeriesNotFound, outcome.EpisodeNotFound, outcome.SkippedOld, outcome.SkippedFailedOld)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)

	queueCmd.Flags().BoolP("dry-run", "n", false, "Do not submit search commands; log only")
	queueCmd.Flags().IntP("limit", "", 0, "Process only the first N scenes after filtering")
	queueCmd.Flags().IntP("random", "", 0, "Process N randomly sampled scenes after filtering")
	queueCmd.Flags().Int64P("seed", "", 0, "Random seed for --random (0 = time-based)")
	queueCmd.Flags().BoolP("full", "", false, "Ignore the history cutoff and retry everything")
	queueCmd.Flags().IntP("lookback-days", "", 0, "History cutoff window (default from config)")
}
