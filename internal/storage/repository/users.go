package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, first_name, last_name, password_hash,
			      email_verified, verification_token, verification_sent_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.EmailVerified, user.VerificationToken, user.VerificationSentAt).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

const userColumns = `uid, email, first_name, last_name, password_hash,
			      email_verified, verification_token, verification_sent_at,
			      name_change_count, last_name_change_date, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var token sql.NullString
	var sentAt, lastChange sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.EmailVerified, &token, &sentAt,
		&u.NameChangeCount, &lastChange, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if token.Valid {
		u.VerificationToken = &token.String
	}
	if sentAt.Valid {
		u.VerificationSentAt = &sentAt.Time
	}
	if lastChange.Valid {
		u.LastNameChangeDate = &lastChange.Time
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email (нижний регистр).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByVerificationToken возвращает пользователя, которому выдан токен.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerificationToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// MarkEmailVerified помечает почту подтверждённой и очищает одноразовый токен.
func (s *Storage) MarkEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkEmailVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email_verified = TRUE, verification_token = NULL,
			      verification_sent_at = NULL, updated_at = NOW()
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RotateVerificationToken записывает новый токен и время его выдачи.
func (s *Storage) RotateVerificationToken(ctx context.Context, userUID, token string, sentAt time.Time) error {
	const op = "storage.RotateVerificationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET verification_token = $1, verification_sent_at = $2, updated_at = NOW()
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, token, sentAt, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserNames обновляет имя и фамилию вместе со счётчиком политики
// одним оператором: колонки имени и состояние политики меняются атомарно.
func (s *Storage) UpdateUserNames(ctx context.Context, userUID, firstName, lastName string,
	changeCount int, lastChange *time.Time) error {
	const op = "storage.UpdateUserNames"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, name_change_count = $3,
			      last_name_change_date = $4, updated_at = NOW()
			  WHERE uid = $5`
	if _, err := s.DB.ExecContext(ctx, query, firstName, lastName, changeCount, lastChange, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetNameChangeCounter сбрасывает счётчик смен имени после истечения
// 60-дневного периода ожидания.
func (s *Storage) ResetNameChangeCounter(ctx context.Context, userUID string) error {
	const op = "storage.ResetNameChangeCounter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name_change_count = 0, last_name_change_date = NULL, updated_at = NOW()
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveUser удаляет пользователя и возвращает количество удалённых строк.
// Связанные записи прогресса и предпочтений удаляются каскадно.
func (s *Storage) RemoveUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.RemoveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
