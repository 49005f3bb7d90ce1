package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// ErrJobNotFound is returned when a job id is unknown or its state expired.
var ErrJobNotFound = errors.New("job not found")

// Job is one queued ingestion request. The payload has already passed the
// validation pipeline before it is enqueued.
type Job struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Payload    []byte    `json:"payload"`
	Structured bool      `json:"structured"`
	Warning    string    `json:"warning,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// State is the queryable status record for a job.
type State struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	NoteID    string    `json:"note_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Queue hands jobs from the API to the worker pool and tracks their state.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue blocks until a job is available or the context is cancelled.
	Dequeue(ctx context.Context) (*Job, error)

	SetState(ctx context.Context, state *State) error
	GetState(ctx context.Context, id string) (*State, error)
}

const (
	pendingListKey = "vn:jobs:pending"
	stateKeyPrefix = "vn:jobs:state:"

	// stateTTL bounds how long finished job states linger for polling.
	stateTTL = 24 * time.Hour

	dequeueBlock = 5 * time.Second
)

// RedisQueue is the Redis-backed Queue.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue wraps an existing client. The caller owns the client's
// lifecycle.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, pendingListKey, encoded).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return q.SetState(ctx, &State{ID: job.ID, Status: StatusQueued, UpdatedAt: time.Now().UTC()})
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		result, err := q.client.BRPop(ctx, dequeueBlock, pendingListKey).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to dequeue job: %w", err)
		}

		// BRPop returns [key, value].
		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		return &job, nil
	}
}

func (q *RedisQueue) SetState(ctx context.Context, state *State) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode job state: %w", err)
	}
	if err := q.client.Set(ctx, stateKeyPrefix+state.ID, encoded, stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job state: %w", err)
	}
	return nil
}

func (q *RedisQueue) GetState(ctx context.Context, id string) (*State, error) {
	raw, err := q.client.Get(ctx, stateKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode job state: %w", err)
	}
	return &state, nil
}
