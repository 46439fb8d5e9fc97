package types

// Difficulty is the judge's coarse difficulty bucket for a problem.
type Difficulty string

const (
	DifficultyLow  Difficulty = "Low"
	DifficultyMid  Difficulty = "Mid"
	DifficultyHigh Difficulty = "High"
)

// RuleType selects how the judge scores a problem.
//
// ACM problems are single-verdict: every test case carries a zero score and
// a submission either passes all cases or fails. OI problems distribute a
// fixed total score across the cases.
type RuleType string

const (
	RuleTypeACM RuleType = "ACM"
	RuleTypeOI  RuleType = "OI"
)

// Template fragment roles as they appear in an FPS document. A language's
// submittable template is assembled as prepend, body, append in that order.
const (
	RolePrepend = "prepend"
	RoleBody    = "body"
	RoleAppend  = "append"
)

// Limit is a time or memory constraint as declared by the source document:
// a numeric value plus the unit tag it was declared with. Units are
// normalized downstream; the parser preserves whatever the document said.
type Limit struct {
	Value float64
	Unit  string
}

// Sample is one example input/output pair shown in the problem statement.
type Sample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// TestCaseSource is one judged input/output pair as read from the archive.
type TestCaseSource struct {
	Name   string
	Input  string
	Output string
}

// CodeFragment is a piece of source code tagged with its language, used for
// special-judge verifiers and reference solutions.
type CodeFragment struct {
	Language string
	Code     string
}

// TemplateFragment is one prepend/body/append piece of a per-language
// submission template.
type TemplateFragment struct {
	Language string
	Role     string
	Code     string
}

// ProblemSource is one problem as parsed from an FPS archive item. It is
// constructed once by the parser and treated as read-only by every later
// pipeline stage.
type ProblemSource struct {
	// Title is the human-readable name of the problem.
	Title string

	// Description, Input, Output and Hint hold the statement sections as
	// opaque rich text, already stripped of CDATA wrappers and entities.
	Description string
	Input       string
	Output      string
	Hint        string

	// Source is the attribution line of the archive item.
	Source string

	// TimeLimit and MemoryLimit are the declared constraints in their
	// original units. Nil means the document omitted the field.
	TimeLimit   *Limit
	MemoryLimit *Limit

	Samples   []Sample
	TestCases []TestCaseSource

	// SpecialJudge is the custom verifier, when the problem needs one.
	SpecialJudge *CodeFragment

	// Solutions are the reference solutions shipped with the item.
	Solutions []CodeFragment

	// Templates are the raw per-language template fragments.
	Templates []TemplateFragment
}

// NormalizedLimits are a problem's constraints in the judge's canonical
// units: milliseconds and megabytes.
type NormalizedLimits struct {
	TimeLimitMS   int
	MemoryLimitMB int
}

// TestCaseScore is one entry of a problem's test-case plan: the pair of
// on-disk file names plus the score that case is worth.
type TestCaseScore struct {
	Score      int    `json:"score"`
	InputName  string `json:"input_name"`
	OutputName string `json:"output_name"`
}

// Problem is the record delivered to the judge, either written into its
// store or posted to its admin API.
type Problem struct {
	// DisplayID is the human-readable identifier, e.g. "fps-1a2b".
	DisplayID string `json:"_id"`

	Title             string `json:"title"`
	Description       string `json:"description"`
	InputDescription  string `json:"input_description"`
	OutputDescription string `json:"output_description"`
	Hint              string `json:"hint"`
	Source            string `json:"source"`

	// TimeLimit is in milliseconds, MemoryLimit in megabytes.
	TimeLimit   int `json:"time_limit"`
	MemoryLimit int `json:"memory_limit"`

	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags"`
	RuleType   RuleType   `json:"rule_type"`
	Visible    bool       `json:"visible"`
	Languages  []string   `json:"languages"`

	Samples []Sample `json:"samples"`

	// Templates maps a judge language identifier to its fully assembled
	// submission template.
	Templates map[string]string `json:"template"`

	SPJ         bool   `json:"spj"`
	SPJCode     string `json:"spj_code,omitempty"`
	SPJLanguage string `json:"spj_language,omitempty"`

	Solution         string `json:"solution,omitempty"`
	SolutionLanguage string `json:"solution_language,omitempty"`

	// TestCaseSetID names the on-disk directory holding the problem's
	// test data.
	TestCaseSetID string `json:"test_case_id"`

	// TestCaseScore is the ordered plan for the materialized cases. Scores
	// sum to the configured total for OI problems and are all zero for ACM.
	TestCaseScore []TestCaseScore `json:"test_case_score"`
}

// TestCaseInfo describes one materialized test case inside the manifest.
// OutputMD5 digests the exact output bytes; StrippedOutputMD5 digests the
// output with trailing whitespace removed, which is what the judge compares
// against stripped program output.
type TestCaseInfo struct {
	InputName         string `json:"input_name"`
	InputSize         int    `json:"input_size"`
	OutputName        string `json:"output_name"`
	OutputSize        int    `json:"output_size"`
	OutputMD5         string `json:"output_md5"`
	StrippedOutputMD5 string `json:"stripped_output_md5"`
}

// TestCaseManifest is the sidecar "info" document written next to a test-case
// set. The judge reads it to locate files and validate expected-output hashes.
// Entries are keyed by the 1-based case index as a decimal string.
type TestCaseManifest struct {
	SPJ       bool                    `json:"spj"`
	TestCases map[string]TestCaseInfo `json:"test_cases"`
}

// StoredProblem is the slice of an existing judge problem a repair run needs:
// where its test data lives and what metadata it currently carries.
type StoredProblem struct {
	ID            int
	DisplayID     string
	TestCaseSetID string
	Difficulty    Difficulty
}

// DeliveryResult reports the outcome of delivering one problem.
type DeliveryResult struct {
	// RemoteID is the identifier assigned by the target system, when the
	// create step got far enough to mint one. It may be set even when the
	// delivery as a whole failed, since API-side uploads are not rolled
	// back after a successful create.
	RemoteID string
}

// ImportedEvent is published after a problem is successfully delivered so
// downstream consumers can react to new test data.
type ImportedEvent struct {
	DisplayID     string `json:"display_id"`
	Title         string `json:"title"`
	TestCaseSetID string `json:"test_case_set_id"`
	CaseCount     int    `json:"case_count"`
	RemoteID      string `json:"remote_id,omitempty"`
}
