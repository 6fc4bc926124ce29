// Package judge talks to the external code-execution service that runs
// coding submissions against their test cases. Scoring only needs the
// pass/fail counts; stdout and judge diagnostics are not surfaced.
package judge

import (
	"context"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// RunResult reports how many test cases a submission passed.
type RunResult struct {
	CasesPassed int
	CasesTotal  int
}

// Runner executes a code submission against a set of test cases.
type Runner interface {
	RunTestCases(ctx context.Context, code string, cases []model.CodingTestCase, timeLimitSec int) (*RunResult, error)
}
