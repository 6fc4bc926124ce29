package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leavedesk/leavegate-backend/internal/config"
	"github.com/leavedesk/leavegate-backend/internal/database"
	"github.com/leavedesk/leavegate-backend/internal/logger"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// Seeds a small development question bank: for each subject, MCQs and
// one coding problem across the difficulty buckets, enough to provision
// every composition tier.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	subjects := []string{"go", "sql", "networking"}
	difficulties := []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}

	created := 0
	for _, subject := range subjects {
		for _, difficulty := range difficulties {
			for i := 1; i <= 4; i++ {
				payload, _ := json.Marshal(model.MCQPayload{
					QuestionText: fmt.Sprintf("[%s/%s] Sample question %d: which statement is correct?", subject, difficulty, i),
					Options: []model.MCQOption{
						{Text: "Option A", IsCorrect: i%4 == 0},
						{Text: "Option B", IsCorrect: i%4 == 1},
						{Text: "Option C", IsCorrect: i%4 == 2},
						{Text: "Option D", IsCorrect: i%4 == 3},
					},
				})
				q := &model.Question{
					Type:       model.QuestionTypeMCQ,
					Subject:    subject,
					Difficulty: difficulty,
					Points:     pointsFor(difficulty),
					Payload:    payload,
				}
				if err := questionRepo.Create(ctx, q); err != nil {
					log.Fatal().Err(err).Msg("Failed to seed mcq")
				}
				created++
			}

			coding, _ := json.Marshal(model.CodingPayload{
				ProblemStatement: fmt.Sprintf("[%s/%s] Read an integer n from stdin and print n doubled.", subject, difficulty),
				InputFormat:      "A single integer n.",
				OutputFormat:     "A single integer, 2*n.",
				SampleInput:      "3",
				SampleOutput:     "6",
				TestCases: []model.CodingTestCase{
					{Input: "3", ExpectedOutput: "6"},
					{Input: "0", ExpectedOutput: "0"},
					{Input: "-7", ExpectedOutput: "-14", Hidden: true},
				},
				TimeLimitSec: 5,
			})
			q := &model.Question{
				Type:       model.QuestionTypeCoding,
				Subject:    subject,
				Difficulty: difficulty,
				Points:     pointsFor(difficulty) * 3,
				Payload:    coding,
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				log.Fatal().Err(err).Msg("Failed to seed coding question")
			}
			created++
		}
	}

	log.Info().Int("count", created).Msg("Question bank seeded")
}

func pointsFor(d model.Difficulty) int {
	switch d {
	case model.DifficultyHard:
		return 10
	case model.DifficultyMedium:
		return 7
	default:
		return 5
	}
}
