// Package pipeline wires the catalog sources, the matching engine, and the
// decision consumers into the compare / queue / duplicate workflows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/snapshot"
	"github.com/stashkit/scenematch/pkg/stash"
	"github.com/stashkit/scenematch/pkg/stashdb"
	"github.com/stashkit/scenematch/pkg/storage"
	"github.com/stashkit/scenematch/pkg/whisparr"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config bundles the external collaborators. The engine itself stays pure;
// everything with a side effect lives behind one of these.
type Config struct {
	Stash        *stash.Client
	StashDB      *stashdb.Client
	Whisparr     *whisparr.Client
	DB           *storage.DB // optional attempt history
	SnapshotRoot string      // optional run-artifact directory
	Log          Logger      // optional; nil = no logging
}

func (cfg Config) logger() Logger {
	if cfg.Log == nil {
		return nopLogger{}
	}
	return cfg.Log
}

// CompareOutcome is the result of the compare workflow for one performer.
type CompareOutcome struct {
	Performer      stashdb.Performer
	LocalPerformer *stash.Performer
	LocalScenes    []stash.Scene
	Result         match.CompareResult
	RunDir         string
}

// Compare fetches both catalogs for a performer (identified by reference
// UUID), snapshots them, and resolves the missing set. A performer with no
// local counterpart yields an empty local catalog, so every reference scene
// comes back missing.
func Compare(ctx context.Context, cfg Config, performerID string) (*CompareOutcome, error) {
	log := cfg.logger()

	performer, err := cfg.StashDB.FindPerformer(performerID)
	if err != nil {
		return nil, err
	}
	log.Infof("reference performer %s (%s)", performer.Name, performer.ID)

	localPerformer, err := cfg.Stash.FindPerformerByCrossRef(performerID)
	if err != nil {
		return nil, err
	}

	var localScenes []stash.Scene
	if localPerformer != nil {
		log.Infof("mapped to local performer %s (%s)", localPerformer.Name, localPerformer.ID)
		localScenes, err = cfg.Stash.ScenesForPerformer(localPerformer.ID)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warnf("no local performer linked to %s; treating local catalog as empty", performerID)
	}

	refScenes, err := cfg.StashDB.ScenesForPerformer(performer.ID)
	if err != nil {
		return nil, err
	}
	log.Infof("catalogs loaded: %d local, %d reference", len(localScenes), len(refScenes))

	result := match.ResolveMissing(refScenes, match.NewIndex(stash.Catalog(localScenes)))

	outcome := &CompareOutcome{
		Performer:   *performer,
		LocalScenes: localScenes,
		Result:      result,
	}
	outcome.LocalPerformer = localPerformer

	if cfg.SnapshotRoot != "" {
		dir, err := snapshot.Dir(cfg.SnapshotRoot, performerID)
		if err != nil {
			return nil, err
		}
		outcome.RunDir = dir
		local := snapshot.LocalSnapshot{InputPerformerID: performerID, Scenes: localScenes}
		if localPerformer != nil {
			local.LocalPerformerID = localPerformer.ID
			local.PerformerName = localPerformer.Name
		}
		if err := snapshot.WriteJSON(dir, snapshot.LocalScenesFile, local); err != nil {
			return nil, err
		}
		if err := snapshot.WriteJSON(dir, snapshot.ReferenceScenesFile, snapshot.ReferenceSnapshot{Performer: *performer, Scenes: refScenes}); err != nil {
			return nil, err
		}
		report := snapshot.MissingReport{Performer: *performer, Missing: result.Missing, Stats: result.Stats}
		if err := snapshot.WriteJSON(dir, snapshot.MissingReportFile, report); err != nil {
			return nil, err
		}
		log.Debugf("artifacts written under %s", dir)
	}

	log.Infof("compare done: %d exact, %d fuzzy, %d missing",
		result.Stats.ExactMatches, result.Stats.FuzzyMatches, result.Stats.MissingCount)
	return outcome, nil
}

// QueueOptions controls the queue workflow.
type QueueOptions struct {
	DryRun       bool
	Limit        int   // process first N after filtering; 0 = all
	Random       int   // process N randomly sampled after filtering; 0 = off
	Seed         int64 // sampling seed; 0 = time-based
	Full         bool  // ignore the lookback cutoff
	LookbackDays int
}

// QueueOutcome summarizes one queue run.
type QueueOutcome struct {
	TotalMissing     int
	SkippedOld       int
	SkippedFailedOld int // cutoff skips that already failed a previous run
	Processed        int
	Queued           int
	SeriesNotFound   int
	EpisodeNotFound  int
}

// QueueMissing reads the performer's missing report and queues a backend
// search for every scene that survives the history cutoff and selection
// filters. Scene outcomes are recorded in the attempt history unless dry-run.
func QueueMissing(ctx context.Context, cfg Config, performerID string, opts QueueOptions) (*QueueOutcome, error) {
	log := cfg.logger()
	if cfg.SnapshotRoot == "" {
		return nil, errors.New("queue requires a snapshot root with a missing report")
	}
	dir, err := snapshot.Dir(cfg.SnapshotRoot, performerID)
	if err != nil {
		return nil, err
	}
	var report snapshot.MissingReport
	if err := snapshot.ReadJSON(dir, snapshot.MissingReportFile, &report); err != nil {
		return nil, fmt.Errorf("read missing report (run compare first): %w", err)
	}

	outcome := &QueueOutcome{TotalMissing: len(report.Missing)}

	var cutoff *time.Time
	if !opts.Full && cfg.DB != nil {
		lastRun, ok, err := cfg.DB.LastRun(ctx, performerID)
		if err != nil {
			return nil, err
		}
		if ok {
			c := lastRun.AddDate(0, 0, -opts.LookbackDays)
			cutoff = &c
			log.Infof("history cutoff %s (last run %s, lookback %dd)",
				c.Format("2006-01-02"), lastRun.Format("2006-01-02"), opts.LookbackDays)
		}
	}

	mark := func(sceneID, status string) {
		if opts.DryRun || cfg.DB == nil || sceneID == "" {
			return
		}
		if err := cfg.DB.MarkAttempt(ctx, performerID, sceneID, status); err != nil {
			log.Warnf("history mark failed for %s: %v", sceneID, err)
		}
	}

	// Scenes older than the cutoff were either seen by a previous run or are
	// too old to have shown up since; scenes without a date always pass.
	var selected []match.Scene
	for _, s := range report.Missing {
		if cutoff != nil && s.Date != nil && s.Date.Before(*cutoff) {
			outcome.SkippedOld++
			if cfg.DB != nil {
				rec, err := cfg.DB.Attempt(ctx, s.ID)
				if err != nil {
					return nil, err
				}
				if rec != nil && rec.LastStatus != storage.StatusQueued {
					outcome.SkippedFailedOld++
				}
			}
			mark(s.ID, storage.StatusSkipped)
			continue
		}
		selected = append(selected, s)
	}

	if opts.Random > 0 && opts.Random < len(selected) {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
		selected = selected[:opts.Random]
	} else if opts.Limit > 0 && opts.Limit < len(selected) {
		selected = selected[:opts.Limit]
	}

	seriesCache, err := cfg.Whisparr.SeriesByTitle()
	if err != nil {
		return nil, err
	}
	episodeCache := make(map[int64][]whisparr.Episode)

	for _, scene := range selected {
		outcome.Processed++
		title := ""
		if scene.Title != nil {
			title = *scene.Title
		}

		var series whisparr.Series
		found := false
		if scene.Studio != nil {
			series, found = seriesCache[match.NormalizeTitle(*scene.Studio)]
		}
		if !found {
			outcome.SeriesNotFound++
			log.Debugf("no backend series for scene %s (studio unknown)", scene.ID)
			mark(scene.ID, storage.StatusSeriesNotFound)
			continue
		}

		episodes, ok := episodeCache[series.ID]
		if !ok {
			episodes, err = cfg.Whisparr.Episodes(series.ID)
			if err != nil {
				return nil, err
			}
			episodeCache[series.ID] = episodes
		}

		episode := whisparr.MatchEpisode(episodes, title, scene.Date)
		if episode == nil {
			outcome.EpisodeNotFound++
			log.Debugf("no backend episode for scene %s (%q)", scene.ID, title)
			mark(scene.ID, storage.StatusEpisodeNotFound)
			continue
		}

		if opts.DryRun {
			log.Infof("dry-run: would queue search for %q (episode %d)", title, episode.ID)
			outcome.Queued++
			continue
		}
		cmdID, err := cfg.Whisparr.QueueEpisodeSearch(episode.ID)
		if err != nil {
			return nil, err
		}
		outcome.Queued++
		log.Infof("queued search for %q (episode %d, command %d)", title, episode.ID, cmdID)
		mark(scene.ID, storage.StatusQueued)
	}

	if !opts.DryRun && cfg.DB != nil {
		if err := cfg.DB.RecordRun(ctx, performerID); err != nil {
			log.Warnf("run record failed: %v", err)
		}
	}
	log.Infof("queue done: %d queued, %d no series, %d no episode, %d skipped old (%d already failed)",
		outcome.Queued, outcome.SeriesNotFound, outcome.EpisodeNotFound, outcome.SkippedOld, outcome.SkippedFailedOld)
	return outcome, nil
}

// SavedSyncOutcome is the saved-sync workflow's result.
type SavedSyncOutcome struct {
	Organized int
	Tagged    int
}

// SyncSaved propagates the library's organized flag into the protection tag:
// every organized scene that does not yet carry the saved tag gets it. The
// duplicate workflow then treats those scenes as protected.
func SyncSaved(ctx context.Context, cfg Config, dryRun bool) (*SavedSyncOutcome, error) {
	log := cfg.logger()

	scenes, err := cfg.Stash.OrganizedScenes()
	if err != nil {
		return nil, err
	}
	outcome := &SavedSyncOutcome{Organized: len(scenes)}

	tagID := ""
	for _, s := range scenes {
		if s.Saved {
			continue
		}
		if dryRun {
			log.Infof("dry-run: would tag scene %s as saved", s.ID)
			outcome.Tagged++
			continue
		}
		if tagID == "" {
			tagID, err = cfg.Stash.EnsureTag(stash.SavedTagName)
			if err != nil {
				return nil, err
			}
		}
		if err := cfg.Stash.TagScene(s, tagID); err != nil {
			return nil, err
		}
		outcome.Tagged++
	}
	log.Infof("saved sync: %d organized scenes, %d newly tagged", outcome.Organized, outcome.Tagged)
	return outcome, nil
}

// DuplicateOptions controls the duplicate workflow.
type DuplicateOptions struct {
	PerformerID  string // reference UUID; empty with WholeLibrary
	WholeLibrary bool
	WindowDays   int
	Workers      int
	ApplyTags    bool
	DryRun       bool
}

// DuplicateOutcome is the duplicate workflow's result.
type DuplicateOutcome struct {
	Scanned int
	Groups  []match.DuplicateGroup
	Tagged  int
	RunDir  string
}

// Duplicates fetches one catalog (performer-scoped or whole library), groups
// duplicates, and optionally tags the remove-candidates. Scenes in groups
// holding protected content are still only marked, never deleted; the tag is
// what downstream cleanup acts on.
func Duplicates(ctx context.Context, cfg Config, opts DuplicateOptions) (*DuplicateOutcome, error) {
	log := cfg.logger()

	var scenes []stash.Scene
	var err error
	if opts.WholeLibrary {
		scenes, err = cfg.Stash.AllScenes()
	} else {
		localPerformer, perr := cfg.Stash.FindPerformerByCrossRef(opts.PerformerID)
		if perr != nil {
			return nil, perr
		}
		if localPerformer == nil {
			return nil, fmt.Errorf("no local performer linked to %s", opts.PerformerID)
		}
		scenes, err = cfg.Stash.ScenesForPerformer(localPerformer.ID)
	}
	if err != nil {
		return nil, err
	}

	policy := match.DuplicateOptions()
	if opts.WindowDays > 0 {
		policy.WindowDays = opts.WindowDays
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	groups := match.GroupDuplicatesParallel(stash.Catalog(scenes), policy, workers)
	outcome := &DuplicateOutcome{Scanned: len(scenes), Groups: groups}
	log.Infof("duplicate scan: %d scenes, %d groups", len(scenes), len(groups))

	if cfg.SnapshotRoot != "" {
		key := opts.PerformerID
		if opts.WholeLibrary {
			key = "library"
		}
		dir, derr := snapshot.Dir(cfg.SnapshotRoot, key)
		if derr != nil {
			return nil, derr
		}
		outcome.RunDir = dir
		report := snapshot.DuplicateReport{PerformerID: opts.PerformerID, Groups: groups}
		if err := snapshot.WriteJSON(dir, snapshot.DuplicateReportFile, report); err != nil {
			return nil, err
		}
	}

	if !opts.ApplyTags || opts.DryRun {
		return outcome, nil
	}

	tagID, err := cfg.Stash.EnsureTag(stash.DuplicateTagName)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]stash.Scene, len(scenes))
	for _, s := range scenes {
		byID[s.ID] = s
	}
	for _, group := range groups {
		for _, id := range group.Remove {
			scene, ok := byID[id]
			if !ok {
				continue
			}
			if err := cfg.Stash.TagScene(scene, tagID); err != nil {
				return nil, err
			}
			outcome.Tagged++
		}
		if group.SaveAll {
			log.Warnf("group %v contains protected content; tagged only, do not delete", group.SceneIDs)
		}
	}
	log.Infof("tagged %d duplicate scenes", outcome.Tagged)
	return outcome, nil
}
