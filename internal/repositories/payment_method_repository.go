package repositories

import (
	"context"
	"database/sql"
	"time"

	"socioBack/internal/models"
)

type PaymentMethodRepository struct {
	DB *sql.DB
}

func (r *PaymentMethodRepository) CreatePaymentMethod(ctx context.Context, name string) (models.PaymentMethod, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO payment_methods (name, created_at) VALUES (?, ?)`, name, time.Now())
	if err != nil {
		return models.PaymentMethod{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.PaymentMethod{}, err
	}
	return r.GetPaymentMethodByID(ctx, int(id))
}

func (r *PaymentMethodRepository) GetPaymentMethodByID(ctx context.Context, id int) (models.PaymentMethod, error) {
	var m models.PaymentMethod
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM payment_methods
		WHERE id = ? AND deleted_at IS NULL`, id).Scan(&m.ID, &m.Name, &m.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.PaymentMethod{}, models.ErrPaymentMethodNotFound
	}
	if err != nil {
		return models.PaymentMethod{}, err
	}
	if updated.Valid {
		t := updated.Time
		m.UpdatedAt = &t
	}
	return m, nil
}

func (r *PaymentMethodRepository) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM payment_methods
		WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		var updated sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &updated); err != nil {
			return nil, err
		}
		if updated.Valid {
			t := updated.Time
			m.UpdatedAt = &t
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (r *PaymentMethodRepository) UpdatePaymentMethod(ctx context.Context, id int, name string) (models.PaymentMethod, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE payment_methods SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		name, time.Now(), id)
	if err != nil {
		return models.PaymentMethod{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.PaymentMethod{}, err
	} else if n == 0 {
		return models.PaymentMethod{}, models.ErrPaymentMethodNotFound
	}
	return r.GetPaymentMethodByID(ctx, id)
}

func (r *PaymentMethodRepository) SoftDeletePaymentMethod(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE payment_methods SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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
