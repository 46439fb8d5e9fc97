package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jjudge-oj/fps-import/internal/store"
	"github.com/jjudge-oj/fps-import/types"
)

// fakeRepairStore serves stored problems by title and records mutations.
type fakeRepairStore struct {
	problems map[string]types.StoredProblem

	scorePlans   map[int][]types.TestCaseScore
	addedTags    map[int][]string
	difficulties map[int]types.Difficulty
	visible      map[int]bool
}

func newFakeRepairStore() *fakeRepairStore {
	return &fakeRepairStore{
		problems:     make(map[string]types.StoredProblem),
		scorePlans:   make(map[int][]types.TestCaseScore),
		addedTags:    make(map[int][]string),
		difficulties: make(map[int]types.Difficulty),
		visible:      make(map[int]bool),
	}
}

func (s *fakeRepairStore) FindByTitle(_ context.Context, title string) (types.StoredProblem, error) {
	problem, ok := s.problems[title]
	if !ok {
		return types.StoredProblem{}, store.ErrNotFound
	}
	return problem, nil
}

func (s *fakeRepairStore) UpdateTestCaseScore(_ context.Context, id int, plan []types.TestCaseScore) error {
	s.scorePlans[id] = plan
	return nil
}

func (s *fakeRepairStore) AddTags(_ context.Context, id int, tags []string) error {
	s.addedTags[id] = append(s.addedTags[id], tags...)
	return nil
}

func (s *fakeRepairStore) SetDifficulty(_ context.Context, id int, difficulty types.Difficulty) error {
	s.difficulties[id] = difficulty
	return nil
}

func (s *fakeRepairStore) SetVisible(_ context.Context, id int, visible bool) error {
	s.visible[id] = visible
	return nil
}

func TestRepairRebuildsExistingProblem(t *testing.T) {
	repairStore := newFakeRepairStore()
	repairStore.problems["求和"] = types.StoredProblem{
		ID:            11,
		DisplayID:     "fps-aa11",
		TestCaseSetID: "11112222333344445555666677778888",
		Difficulty:    types.DifficultyMid,
	}

	dataDir := t.TempDir()
	imp := New(&recordingDeliverer{}, Options{DataDir: dataDir})

	stats, err := imp.Repair(context.Background(), strings.NewReader(twoProblemDocument), repairStore)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	// Only the first item has a stored counterpart.
	if stats.Succeeded != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	// Data lands in the stored problem's existing set directory.
	dir := filepath.Join(dataDir, "11112222333344445555666677778888")
	for _, name := range []string{"1.in", "1.out", "2.in", "2.out", "info"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	plan := repairStore.scorePlans[11]
	if len(plan) != 2 || plan[0].Score != 50 || plan[1].Score != 50 {
		t.Errorf("score plan = %+v", plan)
	}
	if len(repairStore.addedTags[11]) == 0 {
		t.Error("tags must be refreshed")
	}
	if !repairStore.visible[11] {
		t.Error("repaired problems must be made visible")
	}
}

func TestRepairSkipsUnknownTitles(t *testing.T) {
	imp := New(&recordingDeliverer{}, Options{DataDir: t.TempDir()})

	stats, err := imp.Repair(context.Background(), strings.NewReader(twoProblemDocument), newFakeRepairStore())
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if stats.Succeeded != 0 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	for _, failure := range stats.Failures {
		if !strings.Contains(failure.Reason, "no stored problem") {
			t.Errorf("reason = %q", failure.Reason)
		}
	}
}

func TestRepairFailsWithoutSetID(t *testing.T) {
	repairStore := newFakeRepairStore()
	repairStore.problems["求和"] = types.StoredProblem{ID: 5}

	imp := New(&recordingDeliverer{}, Options{DataDir: t.TempDir()})

	stats, err := imp.Repair(context.Background(), strings.NewReader(twoProblemDocument), repairStore)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(repairStore.scorePlans) != 0 {
		t.Error("no mutation expected for a problem without a set id")
	}
}

func TestRepairUpdatesChangedDifficulty(t *testing.T) {
	repairStore := newFakeRepairStore()
	repairStore.problems["求和"] = types.StoredProblem{
		ID:            3,
		TestCaseSetID: "aaaabbbbccccddddeeeeffff00001111",
		Difficulty:    types.DifficultyHigh,
	}

	imp := New(&recordingDeliverer{}, Options{DataDir: t.TempDir()})

	_, err := imp.Repair(context.Background(), strings.NewReader(twoProblemDocument), repairStore)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	// The first document item classifies as Mid; the stored High must be
	// overwritten.
	if repairStore.difficulties[3] != types.DifficultyMid {
		t.Fatalf("difficulty = %q", repairStore.difficulties[3])
	}
}
