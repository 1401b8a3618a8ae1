package repositories

import (
	"context"
	"database/sql"

	"socioBack/internal/models"
)

type AttendanceRepository struct {
	DB *sql.DB
}

func (r *AttendanceRepository) CreateAttendance(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO attendances (member_id, entered_at) VALUES (?, ?)`,
		rec.MemberID, rec.EnteredAt)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	rec.ID = int(id)
	return rec, nil
}

func (r *AttendanceRepository) ListAttendances(ctx context.Context, f models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := ` WHERE 1 = 1`
	var args []any
	if f.Date != nil {
		where += ` AND DATE(a.entered_at) = ?`
		args = append(args, f.Date.Format("2006-01-02"))
	}
	if f.MemberID > 0 {
		where += ` AND a.member_id = ?`
		args = append(args, f.MemberID)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.member_id, a.entered_at, CONCAT(s.first_name, ' ', s.last_name), s.member_number, s.dni
		FROM attendances a
		JOIN members s ON s.id = a.member_id`+where+`
		ORDER BY a.entered_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		err := rows.Scan(&rec.ID, &rec.MemberID, &rec.EnteredAt, &rec.MemberName, &rec.MemberNumber, &rec.DNI)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
