// Package progress содержит бизнес-логику отметок прогресса по играм.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// Repository определяет методы хранилища для записей прогресса.
type Repository interface {
	UpsertProgress(ctx context.Context, userUID string, gameID int, status string, now time.Time) (*models.ProgressRecord, error)
	ListProgressByUser(ctx context.Context, userUID string) ([]*models.ProgressRecord, error)
	GetGame(ctx context.Context, id int) (*models.Game, error)
	ListPreferences(ctx context.Context, userUID string) ([]*models.UserPreference, error)
	UpsertPreference(ctx context.Context, pref models.UserPreference) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Invalidate(key string) error
}

// ProgressService реализует upsert-семантику записей прогресса:
// одна строка на пару (пользователь, игра).
type ProgressService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр ProgressService.
func New(repo Repository, cache Cache, log *slog.Logger) *ProgressService {
	return &ProgressService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// RecommendationCacheKey — ключ кеша рекомендаций пользователя.
// Инвалидируется при любом изменении прогресса.
func RecommendationCacheKey(userUID string) string {
	return "recommendations:" + userUID
}

// Upsert создаёт или обновляет запись прогресса.
func (s *ProgressService) Upsert(ctx context.Context, userUID string, gameID int, status string) (*models.ProgressRecord, error) {
	if !models.ValidProgressStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}
	if _, err := s.repo.GetGame(ctx, gameID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check game: %w", err)
	}

	rec, err := s.repo.UpsertProgress(ctx, userUID, gameID, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	if err := s.cache.Invalidate(RecommendationCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate recommendations cache", slog.Any("err", err))
	}
	return rec, nil
}

// MarkCompleted форсирует статус completed независимо от текущего,
// создавая запись при её отсутствии.
func (s *ProgressService) MarkCompleted(ctx context.Context, userUID string, gameID int) (*models.ProgressRecord, error) {
	return s.Upsert(ctx, userUID, gameID, models.StatusCompleted)
}

// List возвращает записи прогресса пользователя.
func (s *ProgressService) List(ctx context.Context, userUID string) ([]*models.ProgressRecord, error) {
	return s.repo.ListProgressByUser(ctx, userUID)
}

// Preferences возвращает предпочтения пользователя для рекомендаций.
func (s *ProgressService) Preferences(ctx context.Context, userUID string) ([]*models.UserPreference, error) {
	return s.repo.ListPreferences(ctx, userUID)
}

// SetPreference сохраняет предпочтение пользователя.
func (s *ProgressService) SetPreference(ctx context.Context, pref models.UserPreference) (int, error) {
	if pref.PreferenceType == "" || pref.PreferenceValue == "" {
		return 0, fmt.Errorf("%w: preference type and value are required", apperr.ErrValidation)
	}
	if pref.Weight == 0 {
		pref.Weight = 1.0
	}
	id, err := s.repo.UpsertPreference(ctx, pref)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert preference: %w", err)
	}
	if err := s.cache.Invalidate(RecommendationCacheKey(pref.UserUID)); err != nil {
		s.log.Warn("failed to invalidate recommendations cache", slog.Any("err", err))
	}
	return id, nil
}
