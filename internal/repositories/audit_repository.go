package repositories

import (
	"context"
	"database/sql"
	"time"

	"socioBack/internal/models"
)

type AuditRepository struct {
	DB *sql.DB
}

func (r *AuditRepository) CreateAuditLog(ctx context.Context, l models.AuditLog) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, entity, entity_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullInt(l.UserID), l.Action, l.Entity, l.EntityID, nullString(l.Detail), time.Now())
	return err
}

func (r *AuditRepository) ListAuditLogs(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, int, error) {
	where := ` WHERE 1 = 1`
	var args []any
	if f.Entity != "" {
		where += ` AND entity = ?`
		args = append(args, f.Entity)
	}
	if f.UserID > 0 {
		where += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.DateFrom != nil {
		where += ` AND created_at >= ?`
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		where += ` AND created_at <= ?`
		args = append(args, *f.DateTo)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, action, entity, entity_id, detail, created_at
		FROM audit_logs`+where+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		var userID sql.NullInt64
		var detail sql.NullString
		if err := rows.Scan(&l.ID, &userID, &l.Action, &l.Entity, &l.EntityID, &detail, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		if userID.Valid {
			id := int(userID.Int64)
			l.UserID = &id
		}
		if detail.Valid {
			l.Detail = detail.String
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
