package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/config"
)

// AnswersWorker consumes persist_answers_queue and UPSERTs answers to
// PostgreSQL. Redis keeps the live copy; this worker makes it durable
// so a cache flush mid-session loses nothing already written.
type AnswersWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAnswersWorker creates a new AnswersWorker.
func NewAnswersWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AnswersWorker {
	return &AnswersWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "answers_worker").Logger(),
	}
}

type answerPayload struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
	Timestamp  int64  `json:"timestamp"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnswersWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswersWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload answerPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
		return
	}

	if err := w.persistAnswer(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("session_id", payload.SessionID).
			Msg("Persist error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AnswersWorker) persistAnswer(ctx context.Context, p *answerPayload) error {
	sessionID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	// The state guard drops entries that outlived their session: finalize
	// has already flushed the authoritative Redis hash, so anything still
	// queued for a submitted session is stale.
	tag, err := w.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_id, value, submitted_at)
		 SELECT $1, $2, $3, $4
		 FROM test_sessions WHERE id = $1 AND state = 'in-progress'
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET value = EXCLUDED.value, submitted_at = EXCLUDED.submitted_at`,
		sessionID, questionID, p.Value, time.Unix(p.Timestamp, 0),
	)
	if err == nil && tag.RowsAffected() == 0 {
		w.log.Debug().Str("session_id", p.SessionID).Msg("Dropping answer for finalized session")
	}
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AnswersWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var payload answerPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistAnswer(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
