// Package pg persists dispatch reports as an audit trail. The dispatch core
// owns no storage; dispatchd saves each report here after the run so
// operators can review per-recipient outcomes and total cost later.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campusnotify/internal/domain"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

const schema = `
CREATE TABLE IF NOT EXISTS dispatch_reports (
	id          TEXT PRIMARY KEY,
	success     BOOLEAN NOT NULL,
	attempts    INT NOT NULL,
	total_cost  DOUBLE PRECISION NOT NULL,
	channels    JSONB NOT NULL,
	channel_err JSONB,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS dispatch_results (
	report_id       TEXT NOT NULL REFERENCES dispatch_reports(id),
	idx             INT NOT NULL,
	recipient_id    TEXT NOT NULL,
	channel         TEXT NOT NULL,
	provider        TEXT,
	success         BOOLEAN NOT NULL,
	provider_msg_id TEXT,
	error_msg       TEXT,
	cost            DOUBLE PRECISION NOT NULL,
	ts              TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (report_id, channel, idx)
);
CREATE INDEX IF NOT EXISTS dispatch_results_recipient ON dispatch_results (recipient_id);
`

// EnsureSchema creates the audit tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, schema)
	return err
}

func (s *Store) SaveReport(ctx context.Context, report domain.DispatchReport) error {
	channelsJSON, err := json.Marshal(report.Channels)
	if err != nil {
		return err
	}
	var chanErrJSON []byte
	if len(report.ChannelErr) > 0 {
		chanErrJSON, _ = json.Marshal(report.ChannelErr)
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO dispatch_reports (id, success, attempts, total_cost, channels, channel_err, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, report.ID, report.Success, report.Attempts, report.TotalCost, channelsJSON, chanErrJSON, report.StartedAt, report.FinishedAt)
	if err != nil {
		return err
	}

	for ch, batch := range report.Channels {
		for i, res := range batch.Results {
			_, err = tx.Exec(ctx, `
				INSERT INTO dispatch_results (report_id, idx, recipient_id, channel, provider, success, provider_msg_id, error_msg, cost, ts)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			`, report.ID, i, res.RecipientID, string(ch), nullIfEmpty(res.Provider), res.Success,
				nullIfEmpty(res.ProviderMsgID), nullIfEmpty(res.Error), res.Cost, res.Timestamp)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetReport(ctx context.Context, id string) (domain.DispatchReport, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, success, attempts, total_cost, channels, COALESCE(channel_err, 'null'::jsonb), started_at, finished_at
		FROM dispatch_reports WHERE id=$1
	`, id)

	var report domain.DispatchReport
	var channelsJSON, chanErrJSON []byte
	err := row.Scan(&report.ID, &report.Success, &report.Attempts, &report.TotalCost,
		&channelsJSON, &chanErrJSON, &report.StartedAt, &report.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DispatchReport{}, false, nil
		}
		return domain.DispatchReport{}, false, err
	}
	_ = json.Unmarshal(channelsJSON, &report.Channels)
	_ = json.Unmarshal(chanErrJSON, &report.ChannelErr)
	return report, true, nil
}

type ReportSummary struct {
	ID         string    `json:"id"`
	Success    bool      `json:"success"`
	Attempts   int       `json:"attempts"`
	TotalCost  float64   `json:"totalCost"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, success, attempts, total_cost, finished_at
		FROM dispatch_reports ORDER BY finished_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		if err := rows.Scan(&r.ID, &r.Success, &r.Attempts, &r.TotalCost, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
