package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/pipeline"
)

// savedSyncCmd represents the saved-sync command
var savedSyncCmd = &cobra.Command{
	Use:   "saved-sync",
	Short: "Tag every organized scene as saved",
	Long: `Scans the local library for scenes marked organized and applies the saved
protection tag to any that lack it. Saved scenes are never selected for
removal by the duplicates workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, cleanup, err := buildPipelineConfig(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		if closeLog, err := utils.AttachActionLog(cfg.SnapshotRoot); err == nil {
			defer closeLog()
		}

		outcome, err := pipeline.SyncSaved(cmd.Context(), cfg, dryRun)
		if err != nil {
			return err
		}
		utils.Log.Infof("%d organized scenes, %d tagged", outcome.Organized, outcome.Tagged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(savedSyncCmd)

	savedSyncCmd.Flags().BoolP("dry-run", "n", false, "Report only; never apply tags")
}
