package importer

import (
	"fmt"

	"github.com/jjudge-oj/fps-import/types"
)

// DefaultTotalScore is the score distributed across a scored problem's cases.
const DefaultTotalScore = 100

// BuildPlan produces the ordered test-case plan for n cases. In scored mode
// the first n-1 cases each get total/n (integer division) and the last case
// absorbs the rounding remainder, so the plan always sums to exactly total.
// Unscored mode assigns zero everywhere (single-verdict judging). n == 0
// yields an empty plan; the caller decides whether a problem without judged
// cases is acceptable.
//
// File names are 1-based and must match the materializer's iteration order:
// entry i describes the files written as {i+1}.in / {i+1}.out.
func BuildPlan(n, total int, unscored bool) []types.TestCaseScore {
	if n <= 0 {
		return nil
	}

	plan := make([]types.TestCaseScore, 0, n)
	base := 0
	if !unscored {
		base = total / n
	}

	for i := 1; i <= n; i++ {
		score := base
		if !unscored && i == n {
			score = total - base*(n-1)
		}
		plan = append(plan, types.TestCaseScore{
			Score:      score,
			InputName:  fmt.Sprintf("%d.in", i),
			OutputName: fmt.Sprintf("%d.out", i),
		})
	}
	return plan
}
