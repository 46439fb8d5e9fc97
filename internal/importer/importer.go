// Package importer drives the FPS import batch: parse, normalize, plan,
// materialize, deliver, and account for every item. Items are processed
// independently in document order; a failure on one item never aborts the
// batch.
package importer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/jjudge-oj/fps-import/internal/fps"
	"github.com/jjudge-oj/fps-import/internal/mq"
	"github.com/jjudge-oj/fps-import/internal/storage"
	"github.com/jjudge-oj/fps-import/internal/testcase"
	"github.com/jjudge-oj/fps-import/types"
)

// importLanguages are the submission languages enabled on imported problems.
var importLanguages = []string{"C", "C++", "Java", "Python2", "Python3"}

const displayIDPrefix = "fps-"

// Deliverer is the delivery strategy contract. The store strategy writes the
// problem into the judge's database in one transaction; the API strategy
// creates it remotely and uploads the packaged test data.
type Deliverer interface {
	Deliver(ctx context.Context, problem types.Problem, manifest types.TestCaseManifest, dir string) (types.DeliveryResult, error)
}

// Options tune one batch run.
type Options struct {
	// DataDir is the root under which test-case sets are materialized.
	DataDir string

	// TotalScore is the score distributed across a scored problem's cases.
	// Zero means DefaultTotalScore.
	TotalScore int

	// Unscored imports problems for single-verdict (ACM) judging: every
	// test case carries score zero.
	Unscored bool

	// Archive, when set, receives a zip of each delivered problem's test
	// data. Archival failures are logged, never counted against the item.
	Archive *storage.ArchiveStore

	// Events, when set, publishes a problem.imported event per delivered
	// problem. Publish failures are logged, never counted against the item.
	Events *mq.Publisher
}

// Importer converts parsed FPS items into judge problems and hands them to a
// delivery strategy.
type Importer struct {
	deliverer Deliverer
	opts      Options
}

func New(deliverer Deliverer, opts Options) *Importer {
	if opts.TotalScore <= 0 {
		opts.TotalScore = DefaultTotalScore
	}
	return &Importer{deliverer: deliverer, opts: opts}
}

// Run imports every item of the FPS document read from r. Only a malformed
// or version-unsupported document is a fatal error; per-item problems are
// folded into the returned stats.
func (imp *Importer) Run(ctx context.Context, r io.Reader) (types.ImportStats, error) {
	parsed, err := fps.Parse(r)
	if err != nil {
		return types.ImportStats{}, err
	}

	stats := types.ImportStats{Total: parsed.Total}
	for _, failure := range parsed.Skipped {
		stats.Skipped++
		stats.Failures = append(stats.Failures, failure)
		log.WithFields(log.Fields{
			"ordinal": failure.Ordinal,
			"title":   failure.Title,
		}).Warnf("skipping item: %s", failure.Reason)
	}

	for _, item := range parsed.Problems {
		imp.importOne(ctx, item, &stats)
	}

	return stats, nil
}

func (imp *Importer) importOne(ctx context.Context, item fps.ParsedProblem, stats *types.ImportStats) {
	source := item.Source
	logger := log.WithFields(log.Fields{
		"ordinal": item.Ordinal,
		"title":   source.Title,
	})

	problem := imp.buildProblem(source)
	if problem.TimeLimit <= 0 || problem.MemoryLimit <= 0 {
		logger.Warnf("suspicious limits: %dms / %dMB", problem.TimeLimit, problem.MemoryLimit)
	}
	if len(source.TestCases) == 0 {
		logger.Warn("problem has no judged test cases")
	}

	dir, err := testcase.EnsureDir(imp.opts.DataDir, problem.TestCaseSetID)
	if err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("materialization failed: %v", err)
		return
	}

	manifest, err := testcase.Materialize(dir, source.TestCases, problem.SPJ)
	if err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		logger.Errorf("materialization failed: %v", err)
		return
	}

	result, err := imp.deliverer.Deliver(ctx, problem, manifest, dir)
	if err != nil {
		fail(stats, item.Ordinal, source.Title, err.Error())
		fields := log.Fields{}
		if result.RemoteID != "" {
			// The remote record survives a failed upload; record the id
			// so a later repair run can find it.
			fields["remote_id"] = result.RemoteID
		}
		logger.WithFields(fields).Errorf("delivery failed: %v", err)
		return
	}

	stats.Succeeded++
	logger.WithFields(log.Fields{
		"display_id": problem.DisplayID,
		"remote_id":  result.RemoteID,
		"cases":      len(problem.TestCaseScore),
	}).Info("imported problem")

	imp.afterDelivery(ctx, problem, manifest, dir, result, logger)
}

// afterDelivery runs the optional side channels. They never affect the
// item's outcome.
func (imp *Importer) afterDelivery(
	ctx context.Context,
	problem types.Problem,
	manifest types.TestCaseManifest,
	dir string,
	result types.DeliveryResult,
	logger *log.Entry,
) {
	if imp.opts.Archive != nil {
		bundle, err := testcase.PackageZip(dir, manifest)
		if err == nil {
			err = imp.opts.Archive.ArchiveBundle(ctx, problem.TestCaseSetID, bundle)
		}
		if err != nil {
			logger.Warnf("bundle archival failed: %v", err)
		}
	}

	if imp.opts.Events != nil {
		_, err := imp.opts.Events.PublishImported(ctx, types.ImportedEvent{
			DisplayID:     problem.DisplayID,
			Title:         problem.Title,
			TestCaseSetID: problem.TestCaseSetID,
			CaseCount:     len(problem.TestCaseScore),
			RemoteID:      result.RemoteID,
		})
		if err != nil {
			logger.Warnf("event publish failed: %v", err)
		}
	}
}

// buildProblem assembles the judge problem record for one parsed item.
func (imp *Importer) buildProblem(source types.ProblemSource) types.Problem {
	limits := fps.NormalizeLimits(source)
	tags, difficulty := Classify(source.Title, source.Description)

	ruleType := types.RuleTypeOI
	if imp.opts.Unscored {
		ruleType = types.RuleTypeACM
	}

	problem := types.Problem{
		DisplayID:         displayIDPrefix + shortID(),
		Title:             source.Title,
		Description:       source.Description,
		InputDescription:  source.Input,
		OutputDescription: source.Output,
		Hint:              source.Hint,
		Source:            source.Source,
		TimeLimit:         limits.TimeLimitMS,
		MemoryLimit:       limits.MemoryLimitMB,
		Difficulty:        difficulty,
		Tags:              tags,
		RuleType:          ruleType,
		Visible:           false,
		Languages:         importLanguages,
		Samples:           source.Samples,
		Templates:         fps.AssembleTemplates(source.Templates),
		TestCaseSetID:     testcase.NewSetID(),
		TestCaseScore:     BuildPlan(len(source.TestCases), imp.opts.TotalScore, imp.opts.Unscored),
	}

	if source.Source == "" {
		problem.Source = "FPS Import"
	}

	if source.SpecialJudge != nil {
		problem.SPJ = true
		problem.SPJCode = source.SpecialJudge.Code
		problem.SPJLanguage = source.SpecialJudge.Language
	}

	if len(source.Solutions) > 0 {
		problem.Solution = source.Solutions[0].Code
		problem.SolutionLanguage = source.Solutions[0].Language
	}

	return problem
}

func fail(stats *types.ImportStats, ordinal int, title, reason string) {
	stats.Failed++
	stats.Failures = append(stats.Failures, types.ItemFailure{
		Ordinal: ordinal,
		Title:   title,
		Reason:  reason,
	})
}

func shortID() string {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "0000"
	}
	return hex.EncodeToString(buf[:])
}
