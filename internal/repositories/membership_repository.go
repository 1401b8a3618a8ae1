package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

type MembershipRepository struct {
	DB *sql.DB
}

func scanMembership(scanner interface{ Scan(dest ...any) error }) (models.Membership, error) {
	var m models.Membership
	var updated sql.NullTime
	err := scanner.Scan(&m.ID, &m.MemberID, &m.PeriodYear, &m.PeriodMonth,
		&m.PeriodStart, &m.PeriodEnd, &m.CreatedAt, &updated)
	if err != nil {
		return models.Membership{}, err
	}
	if updated.Valid {
		t := updated.Time
		m.UpdatedAt = &t
	}
	return m, nil
}

const membershipColumns = `id, member_id, period_year, period_month, period_start, period_end, created_at, updated_at`

func (r *MembershipRepository) GetMembershipByID(ctx context.Context, id int) (models.Membership, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE id = ? AND deleted_at IS NULL`, id)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return models.Membership{}, models.ErrMembershipNotFound
	}
	return m, err
}

// GetActiveMembership resolves the member's membership whose period contains
// the given day. If several overlap, the latest period_start wins.
func (r *MembershipRepository) GetActiveMembership(ctx context.Context, memberID int, on time.Time) (models.Membership, error) {
	day := on.Format("2006-01-02")
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE member_id = ? AND deleted_at IS NULL
		  AND period_start <= ? AND period_end >= ?
		ORDER BY period_start DESC LIMIT 1`, memberID, day, day)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return models.Membership{}, models.ErrMembershipNotFound
	}
	return m, err
}

// CreateMembership inserts the membership and one line per activity with the
// activity's current catalog price, all in one transaction. The period
// uniqueness check runs inside the same transaction so two concurrent creates
// for the same (member, year, month) cannot both pass.
func (r *MembershipRepository) CreateMembership(ctx context.Context, m models.Membership, activities []models.Activity) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE member_id = ? AND period_year = ? AND period_month = ? AND deleted_at IS NULL
		FOR UPDATE`, m.MemberID, m.PeriodYear, m.PeriodMonth).Scan(&n)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, models.ErrDuplicatePeriod
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO memberships (member_id, period_year, period_month, period_start, period_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.MemberID, m.PeriodYear, m.PeriodMonth, m.PeriodStart, m.PeriodEnd, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, a := range activities {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership_activities (membership_id, activity_id, price_at_attachment, created_at)
			VALUES (?, ?, ?, ?)`, id, a.ID, a.Price.StringFixed(2), now)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(id), nil
}

func (r *MembershipRepository) GetLines(ctx context.Context, membershipID int) ([]models.MembershipActivityLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ma.membership_id, ma.activity_id, a.name, ma.price_at_attachment, ma.created_at
		FROM membership_activities ma
		JOIN activities a ON a.id = ma.activity_id
		WHERE ma.membership_id = ?
		ORDER BY a.name`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.MembershipActivityLine
	for rows.Next() {
		var l models.MembershipActivityLine
		var price string
		if err := rows.Scan(&l.MembershipID, &l.ActivityID, &l.ActivityName, &price, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.PriceAtAttachment, err = decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetTotals derives the membership's charge, payment and balance figures from
// the live line and payment rows. Nothing here is ever cached or stored.
func (r *MembershipRepository) GetTotals(ctx context.Context, membershipID int) (models.MembershipTotals, error) {
	var charged, paid string
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price_at_attachment), 0)
		FROM membership_activities WHERE membership_id = ?`, membershipID).Scan(&charged)
	if err != nil {
		return models.MembershipTotals{}, err
	}
	err = r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments WHERE membership_id = ? AND deleted_at IS NULL`, membershipID).Scan(&paid)
	if err != nil {
		return models.MembershipTotals{}, err
	}
	totalCharged, err := decimal.NewFromString(charged)
	if err != nil {
		return models.MembershipTotals{}, err
	}
	totalPaid, err := decimal.NewFromString(paid)
	if err != nil {
		return models.MembershipTotals{}, err
	}
	balance := totalCharged.Sub(totalPaid)
	return models.MembershipTotals{
		TotalCharged: totalCharged,
		TotalPaid:    totalPaid,
		Balance:      balance,
		IsSettled:    totalCharged.Cmp(totalPaid) <= 0,
	}, nil
}

func (r *MembershipRepository) CountPayments(ctx context.Context, membershipID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL`, membershipID).Scan(&n)
	return n, err
}

// AssignActivity inserts a line with the activity's current catalog price.
// The payment lockout and duplicate checks run inside the transaction: once
// money has moved against the membership its price lines are frozen.
func (r *MembershipRepository) AssignActivity(ctx context.Context, membershipID int, activity models.Activity) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockMembership(ctx, tx, membershipID); err != nil {
		return err
	}
	var payments int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL`, membershipID).Scan(&payments)
	if err != nil {
		return err
	}
	if payments > 0 {
		return models.ErrHasPayments
	}
	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM membership_activities
		WHERE membership_id = ? AND activity_id = ?`, membershipID, activity.ID).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return models.ErrAlreadyAssigned
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO membership_activities (membership_id, activity_id, price_at_attachment, created_at)
		VALUES (?, ?, ?, ?)`, membershipID, activity.ID, activity.Price.StringFixed(2), time.Now())
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MembershipRepository) RemoveActivity(ctx context.Context, membershipID, activityID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockMembership(ctx, tx, membershipID); err != nil {
		return err
	}
	var payments int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL`, membershipID).Scan(&payments)
	if err != nil {
		return err
	}
	if payments > 0 {
		return models.ErrHasPayments
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM membership_activities
		WHERE membership_id = ? AND activity_id = ?`, membershipID, activityID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotAssigned
	}
	return tx.Commit()
}

// ReplaceActivities swaps the membership's whole activity set under the same
// payment lockout as assign/remove.
func (r *MembershipRepository) ReplaceActivities(ctx context.Context, membershipID int, activities []models.Activity) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockMembership(ctx, tx, membershipID); err != nil {
		return err
	}
	var payments int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL`, membershipID).Scan(&payments)
	if err != nil {
		return err
	}
	if payments > 0 {
		return models.ErrHasPayments
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM membership_activities WHERE membership_id = ?`, membershipID); err != nil {
		return err
	}
	now := time.Now()
	for _, a := range activities {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership_activities (membership_id, activity_id, price_at_attachment, created_at)
			VALUES (?, ?, ?, ?)`, membershipID, a.ID, a.Price.StringFixed(2), now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SoftDeleteMembership marks the membership deleted unless it still has
// non-voided payments.
func (r *MembershipRepository) SoftDeleteMembership(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockMembership(ctx, tx, id); err != nil {
		return err
	}
	var payments int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL`, id).Scan(&payments)
	if err != nil {
		return err
	}
	if payments > 0 {
		return models.ErrHasPayments
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE memberships SET deleted_at = ? WHERE id = ?`, time.Now(), id); err != nil {
		return err
	}
	return tx.Commit()
}

// lockMembership takes a row lock on a live membership for the duration of
// the surrounding transaction, or reports it missing.
func lockMembership(ctx context.Context, tx *sql.Tx, membershipID int) error {
	var id int
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM memberships
		WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, membershipID).Scan(&id)
	if err == sql.ErrNoRows {
		return models.ErrMembershipNotFound
	}
	return err
}

// ListMemberships returns one page of memberships with member display data.
// onlyUnpaid keeps the rows whose charged total still exceeds the paid total,
// both derived from live child rows.
func (r *MembershipRepository) ListMemberships(ctx context.Context, f models.MembershipFilter) ([]models.Membership, int, error) {
	where := ` WHERE m.deleted_at IS NULL`
	var args []any
	if f.MemberID > 0 {
		where += ` AND m.member_id = ?`
		args = append(args, f.MemberID)
	}
	if f.Year > 0 {
		where += ` AND m.period_year = ?`
		args = append(args, f.Year)
	}
	if f.Month > 0 {
		where += ` AND m.period_month = ?`
		args = append(args, f.Month)
	}
	if f.OnlyUnpaid {
		where += ` AND (SELECT COALESCE(SUM(price_at_attachment), 0) FROM membership_activities WHERE membership_id = m.id)
			 > (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE membership_id = m.id AND deleted_at IS NULL)`
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM memberships m` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.id, m.member_id, m.period_year, m.period_month, m.period_start, m.period_end,
		       m.created_at, m.updated_at, CONCAT(s.first_name, ' ', s.last_name), s.member_number
		FROM memberships m
		JOIN members s ON s.id = m.member_id` + where + `
		ORDER BY m.period_start DESC, m.id DESC LIMIT ? OFFSET ?`
	limit := f.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var m models.Membership
		var updated sql.NullTime
		err := rows.Scan(&m.ID, &m.MemberID, &m.PeriodYear, &m.PeriodMonth, &m.PeriodStart,
			&m.PeriodEnd, &m.CreatedAt, &updated, &m.MemberName, &m.MemberNumber)
		if err != nil {
			return nil, 0, err
		}
		if updated.Valid {
			t := updated.Time
			m.UpdatedAt = &t
		}
		memberships = append(memberships, m)
	}
	return memberships, total, rows.Err()
}
