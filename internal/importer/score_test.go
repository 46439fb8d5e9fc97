package importer

import (
	"testing"

	"github.com/jjudge-oj/fps-import/types"
)

func TestBuildPlanEvenSplit(t *testing.T) {
	plan := BuildPlan(2, 100, false)
	if len(plan) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(plan))
	}
	if plan[0].Score != 50 || plan[1].Score != 50 {
		t.Fatalf("scores = [%d, %d], want [50, 50]", plan[0].Score, plan[1].Score)
	}
}

func TestBuildPlanLastCaseAbsorbsRemainder(t *testing.T) {
	plan := BuildPlan(3, 100, false)
	want := []int{33, 33, 34}
	for i, entry := range plan {
		if entry.Score != want[i] {
			t.Fatalf("scores = %v, want %v", scores(plan), want)
		}
	}
}

func TestBuildPlanSumsToTotal(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for _, total := range []int{1, 7, 100, 101, 999} {
			plan := BuildPlan(n, total, false)
			sum := 0
			for _, entry := range plan {
				sum += entry.Score
			}
			if sum != total {
				t.Fatalf("n=%d total=%d: plan sums to %d", n, total, sum)
			}
		}
	}
}

func TestBuildPlanUnscored(t *testing.T) {
	plan := BuildPlan(4, 100, true)
	for i, entry := range plan {
		if entry.Score != 0 {
			t.Fatalf("entry %d score = %d, want 0", i, entry.Score)
		}
	}
}

func TestBuildPlanFileNames(t *testing.T) {
	plan := BuildPlan(2, 100, false)
	if plan[0].InputName != "1.in" || plan[0].OutputName != "1.out" {
		t.Fatalf("first entry names = %+v", plan[0])
	}
	if plan[1].InputName != "2.in" || plan[1].OutputName != "2.out" {
		t.Fatalf("second entry names = %+v", plan[1])
	}
}

func TestBuildPlanNoCases(t *testing.T) {
	if plan := BuildPlan(0, 100, false); plan != nil {
		t.Fatalf("expected nil plan, got %v", plan)
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	first := BuildPlan(7, 100, false)
	second := BuildPlan(7, 100, false)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plans differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func scores(plan []types.TestCaseScore) []int {
	out := make([]int, len(plan))
	for i, entry := range plan {
		out[i] = entry.Score
	}
	return out
}
