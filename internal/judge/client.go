package judge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// Client is the HTTP implementation of Runner. It posts the submission
// and all test cases in one request and lets the judge service run them.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient builds a judge client against the given base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if apiKey != "" {
		c.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{
		http: c,
		log:  log.With().Str("component", "judge_client").Logger(),
	}
}

type runRequest struct {
	Code         string        `json:"code"`
	TimeLimitSec int           `json:"time_limit_sec,omitempty"`
	TestCases    []runTestCase `json:"test_cases"`
}

type runTestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

type runResponse struct {
	CasesPassed int    `json:"cases_passed"`
	CasesTotal  int    `json:"cases_total"`
	Error       string `json:"error,omitempty"`
}

// RunTestCases submits the code for execution. Compile errors and
// runtime crashes come back as zero passed cases, not as a transport
// error; a transport error means the judge itself is unreachable.
func (c *Client) RunTestCases(ctx context.Context, code string, cases []model.CodingTestCase, timeLimitSec int) (*RunResult, error) {
	req := runRequest{
		Code:         code,
		TimeLimitSec: timeLimitSec,
		TestCases:    make([]runTestCase, 0, len(cases)),
	}
	for _, tc := range cases {
		req.TestCases = append(req.TestCases, runTestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	var body runResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		Post("/v1/run")
	if err != nil {
		return nil, fmt.Errorf("judge request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("judge returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if body.Error != "" {
		c.log.Debug().Str("judge_error", body.Error).Msg("Submission rejected by judge")
	}

	return &RunResult{CasesPassed: body.CasesPassed, CasesTotal: body.CasesTotal}, nil
}
