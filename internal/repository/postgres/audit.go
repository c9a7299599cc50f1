package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/trainingdiary/internal/models"
)

type AuditRepo struct {
	DB DBTX
}

const saveAuditEvent = `-- name: SaveAuditEvent
INSERT INTO audit_log (login, action, outcome, detail)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, login, action, outcome, detail
`

func (r *AuditRepo) Save(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	rows, err := r.DB.Query(ctx, saveAuditEvent, event.Login, event.Action, event.Outcome, event.Detail)
	if err != nil {
		return event, fmt.Errorf("db error: %w", err)
	}
	saved, err := pgx.CollectOneRow(rows, rowToAuditEvent)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const listAuditByLogin = `-- name: ListAuditByLogin
SELECT id, created_at, login, action, outcome, detail FROM audit_log
WHERE login = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

func (r *AuditRepo) ListByLogin(ctx context.Context, login string, limit int) ([]models.AuditEvent, error) {
	rows, err := r.DB.Query(ctx, listAuditByLogin, login, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	events, err := pgx.CollectRows(rows, rowToAuditEvent)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return events, nil
}

func rowToAuditEvent(row pgx.CollectableRow) (models.AuditEvent, error) {
	var e models.AuditEvent
	err := row.Scan(&e.ID, &e.CreatedAt, &e.Login, &e.Action, &e.Outcome, &e.Detail)
	return e, err
}
