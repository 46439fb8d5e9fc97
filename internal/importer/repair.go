package importer

import (
	"context"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/jjudge-oj/fps-import/internal/fps"
	"github.com/jjudge-oj/fps-import/internal/store"
	"github.com/jjudge-oj/fps-import/internal/testcase"
	"github.com/jjudge-oj/fps-import/types"
)

// RepairStore is the store surface a repair run mutates. Only the local
// store strategy supports repair; the remote API has no lookup-by-title.
type RepairStore interface {
	FindByTitle(ctx context.Context, title string) (types.StoredProblem, error)
	UpdateTestCaseScore(ctx context.Context, id int, plan []types.TestCaseScore) error
	AddTags(ctx context.Context, id int, tags []string) error
	SetDifficulty(ctx context.Context, id int, difficulty types.Difficulty) error
	SetVisible(ctx context.Context, id int, visible bool) error
}

// Repair re-reads an FPS document and, for every item whose title already
// exists in the store, rebuilds its test data in the problem's existing
// test-case-set directory (creating it if it went missing), refreshes the
// score plan, and fills in missing tags and difficulty. Items without a
// matching stored problem are skipped.
func (imp *Importer) Repair(ctx context.Context, r io.Reader, repairStore RepairStore) (types.ImportStats, error) {
	parsed, err := fps.Parse(r)
	if err != nil {
		return types.ImportStats{}, err
	}

	stats := types.ImportStats{Total: parsed.Total}
	for _, failure := range parsed.Skipped {
		stats.Skipped++
		stats.Failures = append(stats.Failures, failure)
	}

	for _, item := range parsed.Problems {
		imp.repairOne(ctx, item, repairStore, &stats)
	}

	return stats, nil
}

func (imp *Importer) repairOne(ctx context.Context, item fps.ParsedProblem, repairStore RepairStore, stats *types.ImportStats) {
	source := item.Source
	logger := log.WithFields(log.Fields{
		"ordinal": item.Ordinal,
		"title":   source.Title,
	})

	stored, err := repairStore.FindByTitle(ctx, source.Title)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			stats.Skipped++
			stats.Failures = append(stats.Failures, types.ItemFailure{
				Ordinal: item.Ordinal,
				Title:   source.Title,
				Reason:  "no stored problem with this title",
			})
			logger.Warn("no stored problem with this title")
			return
		}
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("lookup failed: %v", err)
		return
	}

	if stored.TestCaseSetID == "" {
		fail(stats, item.Ordinal, source.Title, "stored problem has no test case set id")
		logger.Error("stored problem has no test case set id")
		return
	}

	dir, err := testcase.EnsureDir(imp.opts.DataDir, stored.TestCaseSetID)
	if err == nil {
		_, err = testcase.Materialize(dir, source.TestCases, source.SpecialJudge != nil)
	}
	if err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("materialization failed: %v", err)
		return
	}

	plan := BuildPlan(len(source.TestCases), imp.opts.TotalScore, imp.opts.Unscored)
	if err := repairStore.UpdateTestCaseScore(ctx, stored.ID, plan); err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("score update failed: %v", err)
		return
	}

	tags, difficulty := Classify(source.Title, source.Description)
	if err := repairStore.AddTags(ctx, stored.ID, tags); err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("tag update failed: %v", err)
		return
	}
	if difficulty != stored.Difficulty {
		if err := repairStore.SetDifficulty(ctx, stored.ID, difficulty); err != nil {
			fail(stats, item.Ordinal, source.Title, err.Error())
			logger.Errorf("difficulty update failed: %v", err)
			return
		}
	}
	if err := repairStore.SetVisible(ctx, stored.ID, true); err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("visibility update failed: %v", err)
		return
	}

	stats.Succeeded++
	logger.WithFields(log.Fields{
		"display_id": stored.DisplayID,
		"cases":      len(plan),
		"tags":       tags,
	}).Info("repaired problem")
}
