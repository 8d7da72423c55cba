package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// UpsertProgress создаёт или обновляет запись прогресса для пары
// (пользователь, игра). Уникальный индекс по паре гарантирует одну строку.
func (s *Storage) UpsertProgress(ctx context.Context, userUID string, gameID int, status string, now time.Time) (*models.ProgressRecord, error) {
	const op = "storage.UpsertProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_games (user_uid, game_id, status, last_played)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_uid, game_id)
			  DO UPDATE SET status = EXCLUDED.status, last_played = EXCLUDED.last_played
			  RETURNING id, user_uid, game_id, status, last_played, created_at`
	var rec models.ProgressRecord
	if err := s.DB.QueryRowContext(ctx, query, userUID, gameID, status, now).Scan(
		&rec.ID, &rec.UserUID, &rec.GameID, &rec.Status, &rec.LastPlayed, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// ListProgressByUser возвращает все записи прогресса пользователя.
func (s *Storage) ListProgressByUser(ctx context.Context, userUID string) ([]*models.ProgressRecord, error) {
	const op = "storage.ListProgressByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, game_id, status, last_played, created_at
			  FROM user_games
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ProgressRecord
	for rows.Next() {
		var rec models.ProgressRecord
		if err := rows.Scan(&rec.ID, &rec.UserUID, &rec.GameID, &rec.Status, &rec.LastPlayed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPreferences возвращает предпочтения пользователя.
func (s *Storage) ListPreferences(ctx context.Context, userUID string) ([]*models.UserPreference, error) {
	const op = "storage.ListPreferences"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, preference_type, preference_value, weight
			  FROM user_preferences
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserPreference
	for rows.Next() {
		var p models.UserPreference
		if err := rows.Scan(&p.ID, &p.UserUID, &p.PreferenceType, &p.PreferenceValue, &p.Weight); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertPreference сохраняет предпочтение пользователя, обновляя значение
// и вес при повторной записи того же типа.
func (s *Storage) UpsertPreference(ctx context.Context, pref models.UserPreference) (int, error) {
	const op = "storage.UpsertPreference"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_preferences (user_uid, preference_type, preference_value, weight)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_uid, preference_type)
			  DO UPDATE SET preference_value = EXCLUDED.preference_value, weight = EXCLUDED.weight,
			      updated_at = NOW()
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query,
		pref.UserUID, pref.PreferenceType, pref.PreferenceValue, pref.Weight).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
