package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/pipeline"
)

// duplicatesCmd represents the duplicates command
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [performer-uuid]",
	Short: "Find duplicate scenes within the local library",
	Long: `Scans one performer's scenes (or the whole library with --all) for records
that denote the same real-world scene: shared cross-reference ID, or same
normalized title within a date window with agreeing studios. Each group keeps
its best-quality copy; the rest can be tagged for cleanup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wholeLibrary, _ := cmd.Flags().GetBool("all")
		window, _ := cmd.Flags().GetInt("window")
		workers, _ := cmd.Flags().GetInt("workers")
		applyTags, _ := cmd.Flags().GetBool("apply-tags")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		opts := pipeline.DuplicateOptions{
			WholeLibrary: wholeLibrary,
			WindowDays:   window,
			Workers:      workers,
			ApplyTags:    applyTags,
			DryRun:       dryRun,
		}
		if !wholeLibrary {
			if len(args) != 1 || !utils.LooksLikeUUID(args[0]) {
				return fmt.Errorf("pass a reference performer UUID or --all")
			}
			opts.PerformerID = args[0]
		}

		cfg, cleanup, err := buildPipelineConfig(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		if closeLog, err := utils.AttachActionLog(cfg.SnapshotRoot); err == nil {
			defer closeLog()
		}

		outcome, err := pipeline.Duplicates(cmd.Context(), cfg, opts)
		if err != nil {
			return err
		}

		for _, g := range outcome.Groups {
			line := fmt.Sprintf("keep %s remove %v", g.Keep, g.Remove)
			if g.SaveAll {
				line += " [protected]"
			}
			fmt.Println(line)
		}
		utils.Log.Infof("%d scenes scanned, %d duplicate groups, %d tagged",
			outcome.Scanned, len(outcome.Groups), outcome.Tagged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)

	duplicatesCmd.Flags().BoolP("all", "a", false, "Scan the whole library instead of one performer")
	duplicatesCmd.Flags().IntP("window", "w", 7, "Date window in days for fuzzy duplicate matching")
	duplicatesCmd.Flags().IntP("workers", "", 1, "Concurrent title-bucket workers for whole-library scans")
	duplicatesCmd.Flags().BoolP("apply-tags", "", false, "Tag remove-candidates in the local library")
	duplicatesCmd.Flags().BoolP("dry-run", "n", false, "Report only; never apply tags")
}
