package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"email-insight/backend/internal/analysis"
	"email-insight/backend/internal/realtime"
)

const jobsKey = "analysis:queue"

// Queue buffers batch analysis jobs in Redis. Each job is one email request
// analyzed exactly as the synchronous endpoint would; nothing about a job
// survives past its broadcast.
type Queue struct {
	client *redis.Client
}

type Job struct {
	ID        string           `json:"id"`
	Request   analysis.Request `json:"request"`
	CreatedAt time.Time        `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Queue{client: redis.NewClient(opt)}, nil
}

// Enqueue assigns the job id and pushes the job.
func (q *Queue) Enqueue(ctx context.Context, req analysis.Request) (string, error) {
	job := Job{ID: uuid.NewString(), Request: req, CreatedAt: time.Now().UTC()}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, jobsKey, payload).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

func (q *Queue) DequeueBatch(ctx context.Context, batchSize int) ([][]byte, error) {
	var items [][]byte
	for i := 0; i < batchSize; i++ {
		item, err := q.client.RPop(ctx, jobsKey).Bytes()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Worker drains the queue through the analysis pipeline and broadcasts each
// completed result to websocket subscribers.
type Worker struct {
	Queue     *Queue
	Pipeline  *analysis.Pipeline
	Hub       *realtime.Hub
	BatchSize int
}

func (w *Worker) Start(ctx context.Context) {
	batch := w.BatchSize
	if batch <= 0 {
		batch = 20
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		items, err := w.Queue.DequeueBatch(ctx, batch)
		if err != nil {
			time.Sleep(2 * time.Second)
			continue
		}
		if len(items) == 0 {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, raw := range items {
			var job Job
			if err := json.Unmarshal(raw, &job); err != nil {
				log.Printf("discarding malformed job: %v", err)
				continue
			}
			jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			result, err := w.Pipeline.Analyze(jobCtx, &job.Request)
			cancel()
			if err != nil {
				log.Printf("batch job %s rejected: %v", job.ID, err)
				continue
			}
			if w.Hub != nil {
				w.Hub.Broadcast(map[string]any{
					"type":   "email.analysis",
					"job_id": job.ID,
					"result": result,
				})
			}
		}
	}
}
