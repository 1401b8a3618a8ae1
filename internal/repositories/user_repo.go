package repositories

import (
	"context"
	"database/sql"
	"time"

	"socioBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, username, password, full_name, role, created_at, updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	var updated sql.NullTime
	err := scanner.Scan(&u.ID, &u.Username, &u.Password, &u.FullName, &u.Role, &u.CreatedAt, &updated)
	if err != nil {
		return models.User{}, err
	}
	if updated.Valid {
		t := updated.Time
		u.UpdatedAt = &t
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u models.User) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, password, full_name, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Password, u.FullName, u.Role, time.Now())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = ? AND deleted_at IS NULL`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE username = ? AND deleted_at IS NULL AND id <> ?`, username, excludeID).Scan(&n)
	return n > 0, err
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUser(ctx context.Context, u models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET full_name = ?, role = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		u.FullName, u.Role, time.Now(), u.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hashed string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		hashed, time.Now(), id)
	return err
}

func (r *UserRepository) SoftDeleteUser(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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

func (r *UserRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (user_id, role, refresh_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.UserID, s.Role, s.RefreshToken, s.ExpiresAt, time.Now())
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, role, refresh_token, expires_at, created_at
		FROM sessions WHERE refresh_token = ?`, refreshToken).Scan(
		&s.ID, &s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Session{}, nil
	}
	return s, err
}

func (r *UserRepository) DeleteSessionsForUser(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
