package fps

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jjudge-oj/fps-import/types"
)

// ErrUnsupportedVersion is returned when the document's root version
// attribute is not in the supported allow-list. It aborts the whole batch.
var ErrUnsupportedVersion = errors.New("unsupported fps version")

// supportedVersions lists the FPS dialect versions this parser understands.
var supportedVersions = map[string]bool{
	"1.1": true,
	"1.2": true,
	"1.5": true,
}

// Result is the outcome of parsing one FPS document. Items that could not be
// extracted are recorded in Skipped with their ordinal position and reason;
// a per-item failure never aborts the document.
type Result struct {
	Total    int
	Problems []ParsedProblem
	Skipped  []types.ItemFailure
}

// ParsedProblem pairs a successfully parsed item with its 1-based position
// in the document, so later stages can report it.
type ParsedProblem struct {
	Ordinal int
	Source  types.ProblemSource
}

type document struct {
	XMLName xml.Name  `xml:"fps"`
	Version string    `xml:"version,attr"`
	Items   []rawItem `xml:"item"`
}

// rawItem defers decoding of the item body so one malformed item cannot
// poison its siblings.
type rawItem struct {
	Inner string `xml:",innerxml"`
}

type limitNode struct {
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}

type namedNode struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

type codeNode struct {
	Language string `xml:"language,attr"`
	Text     string `xml:",chardata"`
}

type itemNode struct {
	Title         string      `xml:"title"`
	TimeLimit     *limitNode  `xml:"time_limit"`
	MemoryLimit   *limitNode  `xml:"memory_limit"`
	Description   string      `xml:"description"`
	Input         string      `xml:"input"`
	Output        string      `xml:"output"`
	Hint          string      `xml:"hint"`
	Source        string      `xml:"source"`
	SampleInputs  []string    `xml:"sample_input"`
	SampleOutputs []string    `xml:"sample_output"`
	TestInputs    []namedNode `xml:"test_input"`
	TestOutputs   []namedNode `xml:"test_output"`
	Templates     []codeNode  `xml:"template"`
	Prepends      []codeNode  `xml:"prepend"`
	Appends       []codeNode  `xml:"append"`
	SPJ           *codeNode   `xml:"spj"`
	Solutions     []codeNode  `xml:"solution"`
}

// Parse reads an FPS document, validates its declared version and extracts
// one ProblemSource per item. Only a malformed or unsupported document is a
// fatal error; individual items that fail to decode are skipped.
func Parse(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read fps document: %w", err)
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("malformed fps document: %w", err)
	}

	version := strings.TrimSpace(doc.Version)
	if !supportedVersions[version] {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	result := Result{Total: len(doc.Items)}
	for i, raw := range doc.Items {
		ordinal := i + 1
		problem, err := parseItem(raw.Inner)
		if err != nil {
			result.Skipped = append(result.Skipped, types.ItemFailure{
				Ordinal: ordinal,
				Title:   problem.Title,
				Reason:  err.Error(),
			})
			continue
		}
		result.Problems = append(result.Problems, ParsedProblem{
			Ordinal: ordinal,
			Source:  problem,
		})
	}

	return result, nil
}

func parseItem(inner string) (types.ProblemSource, error) {
	var item itemNode
	if err := xml.Unmarshal([]byte("<item>"+inner+"</item>"), &item); err != nil {
		return types.ProblemSource{}, fmt.Errorf("decode item: %w", err)
	}

	problem := types.ProblemSource{
		Title:       SanitizeText(item.Title),
		Description: SanitizeText(item.Description),
		Input:       SanitizeText(item.Input),
		Output:      SanitizeText(item.Output),
		Hint:        SanitizeText(item.Hint),
		Source:      SanitizeText(item.Source),
	}

	timeLimit, err := parseLimit(item.TimeLimit)
	if err != nil {
		return problem, fmt.Errorf("time limit: %w", err)
	}
	problem.TimeLimit = timeLimit

	memoryLimit, err := parseLimit(item.MemoryLimit)
	if err != nil {
		return problem, fmt.Errorf("memory limit: %w", err)
	}
	problem.MemoryLimit = memoryLimit

	// Samples and test cases pair the i-th input with the i-th output. A
	// length mismatch truncates to the shorter list; this mirrors how the
	// judge's own importer has always behaved, so a migrated problem keeps
	// the same case set.
	for i := 0; i < min(len(item.SampleInputs), len(item.SampleOutputs)); i++ {
		problem.Samples = append(problem.Samples, types.Sample{
			Input:  SanitizeText(item.SampleInputs[i]),
			Output: SanitizeText(item.SampleOutputs[i]),
		})
	}

	// Test data is kept byte-exact: the judge hashes the raw output, so
	// trimming here would corrupt the manifest.
	pairs := min(len(item.TestInputs), len(item.TestOutputs))
	if pairs == 0 && (len(item.TestInputs) > 0 || len(item.TestOutputs) > 0) {
		return problem, fmt.Errorf(
			"test data cannot be paired: %d inputs, %d outputs",
			len(item.TestInputs), len(item.TestOutputs),
		)
	}
	for i := 0; i < pairs; i++ {
		name := strings.TrimSpace(item.TestInputs[i].Name)
		if name == "" {
			name = "test_" + strconv.Itoa(i+1)
		}
		problem.TestCases = append(problem.TestCases, types.TestCaseSource{
			Name:   name,
			Input:  item.TestInputs[i].Text,
			Output: item.TestOutputs[i].Text,
		})
	}

	if item.SPJ != nil {
		problem.SpecialJudge = &types.CodeFragment{
			Language: defaultLanguage(item.SPJ.Language),
			Code:     SanitizeText(item.SPJ.Text),
		}
	}

	for _, solution := range item.Solutions {
		problem.Solutions = append(problem.Solutions, types.CodeFragment{
			Language: defaultLanguage(solution.Language),
			Code:     SanitizeText(solution.Text),
		})
	}

	problem.Templates = appendFragments(problem.Templates, item.Prepends, types.RolePrepend)
	problem.Templates = appendFragments(problem.Templates, item.Templates, types.RoleBody)
	problem.Templates = appendFragments(problem.Templates, item.Appends, types.RoleAppend)

	return problem, nil
}

func parseLimit(node *limitNode) (*types.Limit, error) {
	if node == nil {
		return nil, nil
	}
	raw := SanitizeText(node.Value)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", raw)
	}
	return &types.Limit{
		Value: value,
		Unit:  strings.TrimSpace(node.Unit),
	}, nil
}

func appendFragments(dst []types.TemplateFragment, nodes []codeNode, role string) []types.TemplateFragment {
	for _, node := range nodes {
		dst = append(dst, types.TemplateFragment{
			Language: defaultLanguage(node.Language),
			Role:     role,
			Code:     SanitizeText(node.Text),
		})
	}
	return dst
}

func defaultLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return "C++"
	}
	return language
}
