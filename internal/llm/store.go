package llm

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"email-insight/backend/internal/db"
)

// UsageStore persists per-attempt model usage telemetry. Analysis results
// themselves are never stored; every analysis is stateless.
type UsageStore struct {
	DB *db.Store
}

func NewUsageStore(store *db.Store) *UsageStore {
	return &UsageStore{DB: store}
}

func (s *UsageStore) EnsureSchema(ctx context.Context) error {
	return s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS llm_usage (
				id BIGSERIAL PRIMARY KEY,
				provider_name TEXT NOT NULL,
				model_name TEXT NOT NULL,
				input_tokens INT NOT NULL DEFAULT 0,
				output_tokens INT NOT NULL DEFAULT 0,
				total_tokens INT NOT NULL DEFAULT 0,
				latency_ms BIGINT NOT NULL DEFAULT 0,
				success BOOLEAN NOT NULL,
				error_message TEXT NOT NULL DEFAULT '',
				cost NUMERIC(12,6) NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL
			)`)
		return err
	})
}

func (s *UsageStore) InsertUsage(ctx context.Context, providerName string, record UsageRecord, costIn, costOut float64) error {
	return s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO llm_usage (provider_name, model_name, input_tokens, output_tokens, total_tokens, latency_ms, success, error_message, cost, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			providerName, record.Model, record.InputTokens, record.OutputTokens, record.TotalTokens,
			record.Latency.Milliseconds(), record.Success, record.ErrorMessage,
			record.TotalCost(costIn, costOut), time.Now().UTC())
		return err
	})
}

func (s *UsageStore) GetStats(ctx context.Context) (*UsageStats, error) {
	var stats UsageStats
	err := s.DB.WithConn(ctx, func(conn *pgxpool.Conn) error {
		var avgLatencyMS float64
		row := conn.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE success),
			       COUNT(*) FILTER (WHERE NOT success),
			       COALESCE(SUM(cost), 0)::float8,
			       COALESCE(AVG(latency_ms), 0)::float8
			FROM llm_usage`)
		if err := row.Scan(&stats.TotalRequests, &stats.SuccessfulRequests, &stats.FailedRequests, &stats.TotalCost, &avgLatencyMS); err != nil {
			return err
		}
		stats.AverageLatency = time.Duration(avgLatencyMS * float64(time.Millisecond))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
