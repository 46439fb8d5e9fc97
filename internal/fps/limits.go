package fps

import (
	"strings"

	"github.com/jjudge-oj/fps-import/types"
)

// Defaults applied when the document omits a limit entirely.
const (
	DefaultTimeLimitMS   = 1000
	DefaultMemoryLimitMB = 256
)

// NormalizeLimits converts a problem's declared limits to the judge's
// canonical units: integer milliseconds and integer megabytes. Time declared
// in seconds is multiplied out, memory declared in kilobytes is divided by
// 1024; fractions truncate. Zero or negative values pass through unchanged:
// they are a data-quality condition for the caller to surface, not an error.
func NormalizeLimits(source types.ProblemSource) types.NormalizedLimits {
	limits := types.NormalizedLimits{
		TimeLimitMS:   DefaultTimeLimitMS,
		MemoryLimitMB: DefaultMemoryLimitMB,
	}

	if source.TimeLimit != nil {
		switch strings.ToLower(source.TimeLimit.Unit) {
		case "ms":
			limits.TimeLimitMS = int(source.TimeLimit.Value)
		default:
			// FPS declares seconds when the unit tag is absent.
			limits.TimeLimitMS = int(source.TimeLimit.Value * 1000)
		}
	}

	if source.MemoryLimit != nil {
		switch strings.ToLower(source.MemoryLimit.Unit) {
		case "kb":
			limits.MemoryLimitMB = int(source.MemoryLimit.Value / 1024)
		default:
			// "mb" and unlabeled values are already megabytes.
			limits.MemoryLimitMB = int(source.MemoryLimit.Value)
		}
	}

	return limits
}
