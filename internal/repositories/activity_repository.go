package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

type ActivityRepository struct {
	DB *sql.DB
}

func scanActivity(scanner interface{ Scan(dest ...any) error }) (models.Activity, error) {
	var a models.Activity
	var price string
	var description sql.NullString
	var updated sql.NullTime
	err := scanner.Scan(&a.ID, &a.Name, &description, &price, &a.IsBaseDue, &a.CreatedAt, &updated)
	if err != nil {
		return models.Activity{}, err
	}
	if description.Valid {
		a.Description = description.String
	}
	if updated.Valid {
		t := updated.Time
		a.UpdatedAt = &t
	}
	a.Price, err = decimal.NewFromString(price)
	if err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

func (r *ActivityRepository) CreateActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO activities (name, description, price, is_base_due, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.Name, nullString(a.Description), a.Price.StringFixed(2), a.IsBaseDue, time.Now())
	if err != nil {
		return models.Activity{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Activity{}, err
	}
	return r.GetActivityByID(ctx, int(id))
}

func (r *ActivityRepository) GetActivityByID(ctx context.Context, id int) (models.Activity, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, description, price, is_base_due, created_at, updated_at
		FROM activities WHERE id = ? AND deleted_at IS NULL`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return models.Activity{}, models.ErrActivityNotFound
	}
	return a, err
}

// GetActivitiesByIDs returns the live activities for the given ids, in no
// particular order. Missing or soft-deleted ids are simply absent from the
// result; the caller decides whether that is an error.
func (r *ActivityRepository) GetActivitiesByIDs(ctx context.Context, ids []int) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, description, price, is_base_due, created_at, updated_at
		FROM activities WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *ActivityRepository) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, description, price, is_base_due, created_at, updated_at
		FROM activities WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ExistsByName reports whether a live activity with this name already exists,
// excluding the given id (pass 0 on create).
func (r *ActivityRepository) ExistsByName(ctx context.Context, name string, excludeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM activities
		WHERE name = ? AND deleted_at IS NULL AND id <> ?`, name, excludeID).Scan(&n)
	return n > 0, err
}

func (r *ActivityRepository) UpdateActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE activities SET name = ?, description = ?, price = ?, is_base_due = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		a.Name, nullString(a.Description), a.Price.StringFixed(2), a.IsBaseDue, time.Now(), a.ID)
	if err != nil {
		return models.Activity{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Activity{}, err
	} else if n == 0 {
		return models.Activity{}, models.ErrActivityNotFound
	}
	return r.GetActivityByID(ctx, a.ID)
}

// SoftDeleteActivity marks the activity deleted. Deleting an already-deleted
// or missing activity is a no-op returning false.
func (r *ActivityRepository) SoftDeleteActivity(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE activities SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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
