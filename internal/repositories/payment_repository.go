package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func scanPayment(scanner interface{ Scan(dest ...any) error }) (models.Payment, error) {
	var p models.Payment
	var amount string
	var processedBy sql.NullInt64
	var updated sql.NullTime
	err := scanner.Scan(&p.ID, &p.MembershipID, &p.PaymentMethodID, &processedBy,
		&amount, &p.PaidAt, &p.CreatedAt, &updated)
	if err != nil {
		return models.Payment{}, err
	}
	if processedBy.Valid {
		id := int(processedBy.Int64)
		p.ProcessedByUserID = &id
	}
	if updated.Valid {
		t := updated.Time
		p.UpdatedAt = &t
	}
	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

const paymentColumns = `id, membership_id, payment_method_id, processed_by_user_id, amount, paid_at, created_at, updated_at`

// CreatePayment registers a payment against a membership. The membership row
// is locked for the duration of the transaction and the balance is recomputed
// inside it, so two concurrent payments cannot both pass the check against a
// stale balance and jointly overpay.
func (r *PaymentRepository) CreatePayment(ctx context.Context, p models.Payment) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var membershipID int
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM memberships
		WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, p.MembershipID).Scan(&membershipID)
	if err == sql.ErrNoRows {
		return 0, models.ErrMembershipNotFound
	}
	if err != nil {
		return 0, err
	}

	var charged, paid string
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price_at_attachment), 0)
		FROM membership_activities WHERE membership_id = ?`, p.MembershipID).Scan(&charged)
	if err != nil {
		return 0, err
	}
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments WHERE membership_id = ? AND deleted_at IS NULL`, p.MembershipID).Scan(&paid)
	if err != nil {
		return 0, err
	}
	totalCharged, err := decimal.NewFromString(charged)
	if err != nil {
		return 0, err
	}
	totalPaid, err := decimal.NewFromString(paid)
	if err != nil {
		return 0, err
	}
	balance := totalCharged.Sub(totalPaid)
	if p.Amount.Cmp(balance) > 0 {
		return 0, &models.AmountExceedsBalanceError{Balance: balance}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO payments (membership_id, payment_method_id, processed_by_user_id, amount, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.MembershipID, p.PaymentMethodID, nullInt(p.ProcessedByUserID),
		p.Amount.StringFixed(2), p.PaidAt, time.Now())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(id), nil
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, id int) (models.Payment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE id = ? AND deleted_at IS NULL`, id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	return p, err
}

// GetPaymentsForMembership returns the membership's non-voided payments
// ordered by registration, oldest first. created_at breaks paid_at ties since
// paid_at may be client-supplied and non-unique.
func (r *PaymentRepository) GetPaymentsForMembership(ctx context.Context, membershipID int) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE membership_id = ? AND deleted_at IS NULL
		ORDER BY paid_at, created_at, id`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// VoidPayment soft-deletes the payment, permanently excluding it from every
// total. Voiding an already-voided or missing payment is a no-op returning
// false.
func (r *PaymentRepository) VoidPayment(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE payments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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

func (r *PaymentRepository) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	where := ` WHERE p.deleted_at IS NULL`
	var args []any
	if f.MembershipID > 0 {
		where += ` AND p.membership_id = ?`
		args = append(args, f.MembershipID)
	}
	if f.MemberID > 0 {
		where += ` AND m.member_id = ?`
		args = append(args, f.MemberID)
	}
	if f.MethodID > 0 {
		where += ` AND p.payment_method_id = ?`
		args = append(args, f.MethodID)
	}
	if f.DateFrom != nil {
		where += ` AND p.paid_at >= ?`
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		where += ` AND p.paid_at <= ?`
		args = append(args, *f.DateTo)
	}

	base := ` FROM payments p
		JOIN memberships m ON m.id = p.membership_id
		JOIN members s ON s.id = m.member_id
		JOIN payment_methods pm ON pm.id = p.payment_method_id` + where

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
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
	query := `SELECT p.id, p.membership_id, p.payment_method_id, p.processed_by_user_id,
		p.amount, p.paid_at, p.created_at, p.updated_at,
		pm.name, CONCAT(s.first_name, ' ', s.last_name)` + base + `
		ORDER BY p.paid_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var amount string
		var processedBy sql.NullInt64
		var updated sql.NullTime
		err := rows.Scan(&p.ID, &p.MembershipID, &p.PaymentMethodID, &processedBy,
			&amount, &p.PaidAt, &p.CreatedAt, &updated, &p.MethodName, &p.MemberName)
		if err != nil {
			return nil, 0, err
		}
		if processedBy.Valid {
			id := int(processedBy.Int64)
			p.ProcessedByUserID = &id
		}
		if updated.Valid {
			t := updated.Time
			p.UpdatedAt = &t
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

// GetStatistics aggregates collection figures over non-voided payments within
// the optional date range, plus the outstanding balance summed over all live
// memberships.
func (r *PaymentRepository) GetStatistics(ctx context.Context, from, to *time.Time, now time.Time) (models.PaymentStatistics, error) {
	where := ` WHERE p.deleted_at IS NULL`
	var args []any
	if from != nil {
		where += ` AND p.paid_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		where += ` AND p.paid_at <= ?`
		args = append(args, *to)
	}

	stats := models.PaymentStatistics{
		TotalCollected:     decimal.Zero,
		CollectedToday:     decimal.Zero,
		CollectedThisMonth: decimal.Zero,
		PendingBalance:     decimal.Zero,
	}

	var total string
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.amount), 0) FROM payments p`+where, args...).Scan(&total)
	if err != nil {
		return stats, err
	}
	if stats.TotalCollected, err = decimal.NewFromString(total); err != nil {
		return stats, err
	}

	day := now.Format("2006-01-02")
	var today string
	err = r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE deleted_at IS NULL AND DATE(paid_at) = ?`, day).Scan(&today)
	if err != nil {
		return stats, err
	}
	if stats.CollectedToday, err = decimal.NewFromString(today); err != nil {
		return stats, err
	}

	var month string
	err = r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE deleted_at IS NULL AND YEAR(paid_at) = ? AND MONTH(paid_at) = ?`,
		now.Year(), int(now.Month())).Scan(&month)
	if err != nil {
		return stats, err
	}
	if stats.CollectedThisMonth, err = decimal.NewFromString(month); err != nil {
		return stats, err
	}

	var pending string
	err = r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(GREATEST(charged - paid, 0)), 0) FROM (
			SELECT
				(SELECT COALESCE(SUM(price_at_attachment), 0) FROM membership_activities WHERE membership_id = m.id) AS charged,
				(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE membership_id = m.id AND deleted_at IS NULL) AS paid
			FROM memberships m WHERE m.deleted_at IS NULL
		) t`).Scan(&pending)
	if err != nil {
		return stats, err
	}
	if stats.PendingBalance, err = decimal.NewFromString(pending); err != nil {
		return stats, err
	}

	methodRows, err := r.DB.QueryContext(ctx, `
		SELECT pm.id, pm.name, COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payments p JOIN payment_methods pm ON pm.id = p.payment_method_id`+where+`
		GROUP BY pm.id, pm.name ORDER BY pm.name`, args...)
	if err != nil {
		return stats, err
	}
	defer methodRows.Close()
	for methodRows.Next() {
		var b models.MethodBreakdown
		var sum string
		if err := methodRows.Scan(&b.MethodID, &b.MethodName, &b.Count, &sum); err != nil {
			return stats, err
		}
		if b.Total, err = decimal.NewFromString(sum); err != nil {
			return stats, err
		}
		stats.ByMethod = append(stats.ByMethod, b)
	}
	if err := methodRows.Err(); err != nil {
		return stats, err
	}

	dayRows, err := r.DB.QueryContext(ctx, `
		SELECT DATE(p.paid_at), COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payments p`+where+`
		GROUP BY DATE(p.paid_at) ORDER BY DATE(p.paid_at)`, args...)
	if err != nil {
		return stats, err
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var b models.DayBreakdown
		var sum string
		if err := dayRows.Scan(&b.Day, &b.Count, &sum); err != nil {
			return stats, err
		}
		if b.Total, err = decimal.NewFromString(sum); err != nil {
			return stats, err
		}
		stats.ByDay = append(stats.ByDay, b)
	}
	return stats, dayRows.Err()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
