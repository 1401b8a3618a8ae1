package repositories

import (
	"context"
	"database/sql"
	"time"

	"socioBack/internal/models"
)

type MemberRepository struct {
	DB *sql.DB
}

const memberColumns = `id, member_number, first_name, last_name, dni, email, phone, birth_date, active, created_at, updated_at`

func scanMember(scanner interface{ Scan(dest ...any) error }) (models.Member, error) {
	var m models.Member
	var email, phone sql.NullString
	var birth, updated sql.NullTime
	err := scanner.Scan(&m.ID, &m.MemberNumber, &m.FirstName, &m.LastName, &m.DNI,
		&email, &phone, &birth, &m.Active, &m.CreatedAt, &updated)
	if err != nil {
		return models.Member{}, err
	}
	if email.Valid {
		m.Email = email.String
	}
	if phone.Valid {
		m.Phone = phone.String
	}
	if birth.Valid {
		t := birth.Time
		m.BirthDate = &t
	}
	if updated.Valid {
		t := updated.Time
		m.UpdatedAt = &t
	}
	return m, nil
}

// CreateMember inserts the member with the next free member number. The
// number assignment and the insert share a transaction so two concurrent
// creates cannot pick the same number.
func (r *MemberRepository) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Member{}, err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(member_number), 0) + 1 FROM members FOR UPDATE`).Scan(&next)
	if err != nil {
		return models.Member{}, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO members (member_number, first_name, last_name, dni, email, phone, birth_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		next, m.FirstName, m.LastName, m.DNI, nullString(m.Email), nullString(m.Phone),
		m.BirthDate, m.Active, time.Now())
	if err != nil {
		return models.Member{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Member{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Member{}, err
	}
	return r.GetMemberByID(ctx, int(id))
}

func (r *MemberRepository) GetMemberByID(ctx context.Context, id int) (models.Member, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE id = ? AND deleted_at IS NULL`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return models.Member{}, models.ErrMemberNotFound
	}
	return m, err
}

func (r *MemberRepository) GetMemberByDNI(ctx context.Context, dni string) (models.Member, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE dni = ? AND deleted_at IS NULL`, dni)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return models.Member{}, models.ErrMemberNotFound
	}
	return m, err
}

// ExistsByDNI reports whether a live member with this DNI exists, excluding
// the given id (pass 0 on create).
func (r *MemberRepository) ExistsByDNI(ctx context.Context, dni string, excludeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM members
		WHERE dni = ? AND deleted_at IS NULL AND id <> ?`, dni, excludeID).Scan(&n)
	return n > 0, err
}

func (r *MemberRepository) ListMembers(ctx context.Context, f models.MemberFilter) ([]models.Member, int, error) {
	where := ` WHERE deleted_at IS NULL`
	var args []any
	if f.Search != "" {
		where += ` AND (first_name LIKE ? OR last_name LIKE ? OR dni LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.DNI != "" {
		where += ` AND dni = ?`
		args = append(args, f.DNI)
	}
	if f.Active != nil {
		where += ` AND active = ?`
		args = append(args, *f.Active)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM members`+where+`
		ORDER BY last_name, first_name LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

func (r *MemberRepository) UpdateMember(ctx context.Context, m models.Member) (models.Member, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE members SET first_name = ?, last_name = ?, dni = ?, email = ?, phone = ?, birth_date = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		m.FirstName, m.LastName, m.DNI, nullString(m.Email), nullString(m.Phone),
		m.BirthDate, time.Now(), m.ID)
	if err != nil {
		return models.Member{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Member{}, err
	} else if n == 0 {
		return models.Member{}, models.ErrMemberNotFound
	}
	return r.GetMemberByID(ctx, m.ID)
}

func (r *MemberRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE members SET active = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		active, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}

// SoftDeleteMember is idempotent: deleting an already-deleted or missing
// member is a no-op returning false.
func (r *MemberRepository) SoftDeleteMember(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE members SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MemberRepository) AddDeviceToken(ctx context.Context, memberID int, token string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO device_tokens (member_id, token, created_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE created_at = VALUES(created_at)`,
		memberID, token, time.Now())
	return err
}

func (r *MemberRepository) GetDeviceTokens(ctx context.Context, memberID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT token FROM device_tokens WHERE member_id = ?`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
