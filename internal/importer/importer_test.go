package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jjudge-oj/fps-import/internal/fps"
	"github.com/jjudge-oj/fps-import/types"
)

const twoProblemDocument = `<fps version="1.2">
  <item>
    <title><![CDATA[求和]]></title>
    <time_limit unit="s">1</time_limit>
    <memory_limit unit="mb">64</memory_limit>
    <description><![CDATA[循环求和。]]></description>
    <test_input>1 2
</test_input>
    <test_output>3
</test_output>
    <test_input>4 5
</test_input>
    <test_output>9
</test_output>
  </item>
  <item>
    <title><![CDATA[回文判断]]></title>
    <description><![CDATA[判断是否回文。]]></description>
    <test_input>aba
</test_input>
    <test_output>yes
</test_output>
  </item>
</fps>`

// recordingDeliverer captures every delivery and optionally fails some of
// them by title.
type recordingDeliverer struct {
	delivered []types.Problem
	dirs      []string
	manifests []types.TestCaseManifest
	failTitle string
}

func (d *recordingDeliverer) Deliver(
	_ context.Context,
	problem types.Problem,
	manifest types.TestCaseManifest,
	dir string,
) (types.DeliveryResult, error) {
	if problem.Title == d.failTitle {
		return types.DeliveryResult{}, errors.New("delivery refused")
	}
	d.delivered = append(d.delivered, problem)
	d.dirs = append(d.dirs, dir)
	d.manifests = append(d.manifests, manifest)
	return types.DeliveryResult{RemoteID: "7"}, nil
}

func TestRunImportsProblems(t *testing.T) {
	deliverer := &recordingDeliverer{}
	imp := New(deliverer, Options{DataDir: t.TempDir()})

	stats, err := imp.Run(context.Background(), strings.NewReader(twoProblemDocument))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Total != 2 || stats.Succeeded != 2 || stats.Failed != 0 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(deliverer.delivered) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliverer.delivered))
	}

	first := deliverer.delivered[0]
	if !strings.HasPrefix(first.DisplayID, "fps-") || len(first.DisplayID) != len("fps-")+4 {
		t.Errorf("display id = %q", first.DisplayID)
	}
	if first.TimeLimit != 1000 || first.MemoryLimit != 64 {
		t.Errorf("limits = %d / %d", first.TimeLimit, first.MemoryLimit)
	}
	if first.RuleType != types.RuleTypeOI {
		t.Errorf("rule type = %q", first.RuleType)
	}
	if first.Visible {
		t.Error("imported problems must start hidden")
	}
	if len(first.TestCaseSetID) != 32 {
		t.Errorf("test case set id = %q", first.TestCaseSetID)
	}
	if len(first.Languages) == 0 {
		t.Error("languages must be populated")
	}

	plan := first.TestCaseScore
	if len(plan) != 2 || plan[0].Score != 50 || plan[1].Score != 50 {
		t.Errorf("score plan = %+v", plan)
	}

	// Case files and the manifest must exist where the deliverer saw them.
	dir := deliverer.dirs[0]
	for _, name := range []string{"1.in", "1.out", "2.in", "2.out", "info"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	second := deliverer.delivered[1]
	if first.DisplayID == second.DisplayID {
		t.Error("display ids must differ between items")
	}
	if first.TestCaseSetID == second.TestCaseSetID {
		t.Error("test case set ids must differ between items")
	}
	if second.TimeLimit != fps.DefaultTimeLimitMS || second.MemoryLimit != fps.DefaultMemoryLimitMB {
		t.Errorf("default limits = %d / %d", second.TimeLimit, second.MemoryLimit)
	}
}

func TestRunUnscored(t *testing.T) {
	deliverer := &recordingDeliverer{}
	imp := New(deliverer, Options{DataDir: t.TempDir(), Unscored: true})

	_, err := imp.Run(context.Background(), strings.NewReader(twoProblemDocument))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, problem := range deliverer.delivered {
		if problem.RuleType != types.RuleTypeACM {
			t.Errorf("rule type = %q, want ACM", problem.RuleType)
		}
		for _, entry := range problem.TestCaseScore {
			if entry.Score != 0 {
				t.Errorf("unscored plan carries score %d", entry.Score)
			}
		}
	}
}

func TestRunCustomTotalScore(t *testing.T) {
	deliverer := &recordingDeliverer{}
	imp := New(deliverer, Options{DataDir: t.TempDir(), TotalScore: 60})

	_, err := imp.Run(context.Background(), strings.NewReader(twoProblemDocument))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	plan := deliverer.delivered[0].TestCaseScore
	if plan[0].Score != 30 || plan[1].Score != 30 {
		t.Fatalf("plan = %+v, want 30/30", plan)
	}
}

func TestRunIsolatesDeliveryFailure(t *testing.T) {
	deliverer := &recordingDeliverer{failTitle: "求和"}
	imp := New(deliverer, Options{DataDir: t.TempDir()})

	stats, err := imp.Run(context.Background(), strings.NewReader(twoProblemDocument))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Succeeded != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(stats.Failures) != 1 {
		t.Fatalf("failures = %+v", stats.Failures)
	}
	failure := stats.Failures[0]
	if failure.Ordinal != 1 || failure.Title != "求和" {
		t.Errorf("failure = %+v", failure)
	}
	if !strings.Contains(failure.Reason, "delivery refused") {
		t.Errorf("reason = %q", failure.Reason)
	}
	if len(deliverer.delivered) != 1 || deliverer.delivered[0].Title != "回文判断" {
		t.Fatalf("delivered = %+v", deliverer.delivered)
	}
}

func TestRunCountsSkippedItems(t *testing.T) {
	doc := `<fps version="1.2">
  <item>
    <title>broken</title>
    <time_limit unit="s">fast</time_limit>
  </item>
  <item>
    <title>fine</title>
  </item>
</fps>`

	deliverer := &recordingDeliverer{}
	imp := New(deliverer, Options{DataDir: t.TempDir()})

	stats, err := imp.Run(context.Background(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Total != 2 || stats.Succeeded != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunFatalOnUnsupportedVersion(t *testing.T) {
	imp := New(&recordingDeliverer{}, Options{DataDir: t.TempDir()})

	_, err := imp.Run(context.Background(), strings.NewReader(`<fps version="2.0"></fps>`))
	if !errors.Is(err, fps.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestBuildProblemSpecialJudgeAndSolution(t *testing.T) {
	imp := New(&recordingDeliverer{}, Options{DataDir: t.TempDir()})

	problem := imp.buildProblem(types.ProblemSource{
		Title: "spj problem",
		SpecialJudge: &types.CodeFragment{
			Language: "C++",
			Code:     "int main() { return 0; }",
		},
		Solutions: []types.CodeFragment{
			{Language: "Python3", Code: "print(1)"},
			{Language: "C", Code: "/* second */"},
		},
	})

	if !problem.SPJ || problem.SPJLanguage != "C++" {
		t.Errorf("spj = %v / %q", problem.SPJ, problem.SPJLanguage)
	}
	if problem.Solution != "print(1)" || problem.SolutionLanguage != "Python3" {
		t.Errorf("solution = %q / %q", problem.Solution, problem.SolutionLanguage)
	}
	if problem.Source != "FPS Import" {
		t.Errorf("default source = %q", problem.Source)
	}
}
