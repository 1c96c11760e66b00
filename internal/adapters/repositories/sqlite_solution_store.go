package repositories

import (
	"context"
	"database/sql"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLite-backed implementation of the SolutionStore port.
// Solutions are stored whole as JSON; the other columns exist for ad-hoc queries.
type SqliteSolutionStore struct{ DB *sql.DB }

func NewSqliteSolutionStore(db *sql.DB) *SqliteSolutionStore {
	return &SqliteSolutionStore{DB: db}
}

func (s *SqliteSolutionStore) Save(ctx context.Context, sol *domain.Solution) (err error) {
	defer obs.Time(ctx, "solutions.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite solution store: DB is nil")
	}
	if sol == nil || sol.RequestID == "" {
		return errors.New("save solution: request id must not be empty")
	}

	payload, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("save solution %q: encode: %w", sol.RequestID, err)
	}

	query := `
	INSERT OR REPLACE INTO solutions (
		request_id,
		solved_at,
		total_distance_km,
		weather,
		payload
	)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		sol.RequestID,
		sol.SolvedAt.UTC().Format(time.RFC3339Nano),
		sol.TotalDistanceKm,
		string(sol.Weather.Condition),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save solution %q: %w", sol.RequestID, err)
	}

	return nil
}

func (s *SqliteSolutionStore) Get(ctx context.Context, requestID string) (_ *domain.Solution, err error) {
	defer obs.Time(ctx, "solutions.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite solution store: DB is nil")
	}

	var payload string
	err = s.DB.QueryRowContext(ctx,
		`SELECT payload FROM solutions WHERE request_id = ?;`,
		requestID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get solution %q: %w", requestID, ports.ErrSolutionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get solution %q: %w", requestID, err)
	}

	var sol domain.Solution
	if err := json.Unmarshal([]byte(payload), &sol); err != nil {
		return nil, fmt.Errorf("get solution %q: decode: %w", requestID, err)
	}

	return &sol, nil
}
