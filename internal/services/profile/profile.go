// Package profile содержит бизнес-логику профиля пользователя,
// включая политику ограничения смен имени.
package profile

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

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateUserNames(ctx context.Context, userUID, firstName, lastName string, changeCount int, lastChange *time.Time) error
	ResetNameChangeCounter(ctx context.Context, userUID string) error
	RemoveUser(ctx context.Context, userUID string) (int, error)
}

// ProfileService реализует чтение, обновление и удаление профиля.
type ProfileService struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый экземпляр ProfileService.
func New(repo UserRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo: repo,
		log:  log,
	}
}

// Get возвращает профиль пользователя.
func (s *ProfileService) Get(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateNames применяет смену имени с учётом политики. Если ни имя, ни
// фамилия не отличаются от сохранённых, счётчик не изменяется и политика
// не проверяется. Решение политики и обновление колонок применяются
// одним оператором хранилища.
func (s *ProfileService) UpdateNames(ctx context.Context, userUID, firstName, lastName string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.FirstName == firstName && user.LastName == lastName {
		return user, nil
	}

	now := time.Now().UTC()
	decision := CanChangeName(user.NameChangeCount, user.LastNameChangeDate, now)
	if !decision.Allowed {
		s.log.Info("name change blocked by policy",
			slog.String("user_uid", userUID),
			slog.Int("days_remaining", decision.CooldownDaysRemaining))
		return nil, &apperr.PolicyBlocked{DaysRemaining: decision.CooldownDaysRemaining}
	}

	changeCount := user.NameChangeCount
	if decision.ResetCounter {
		if err := s.repo.ResetNameChangeCounter(ctx, userUID); err != nil {
			return nil, fmt.Errorf("failed to reset name change counter: %w", err)
		}
		changeCount = 0
	}

	changeCount++
	if err := s.repo.UpdateUserNames(ctx, userUID, firstName, lastName, changeCount, &now); err != nil {
		return nil, fmt.Errorf("failed to update names: %w", err)
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.NameChangeCount = changeCount
	user.LastNameChangeDate = &now
	return user, nil
}

// Remove удаляет учётную запись пользователя.
func (s *ProfileService) Remove(ctx context.Context, userUID string) error {
	count, err := s.repo.RemoveUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	if count == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
