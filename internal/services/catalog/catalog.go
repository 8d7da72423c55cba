// Package catalog содержит бизнес-логику каталога игр с кешированием.
package catalog

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

// GameRepository определяет методы для работы с каталогом в хранилище.
type GameRepository interface {
	// ListGames возвращает каталог в порядке добавления.
	ListGames(ctx context.Context) ([]*models.Game, error)
	// GetGame возвращает игру по ID.
	GetGame(ctx context.Context, id int) (*models.Game, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const catalogCacheKey = "catalog:games"

// CatalogService реализует чтение каталога, используя кеш или репозиторий.
type CatalogService struct {
	repo  GameRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр CatalogService.
func New(repo GameRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает весь каталог игр.
func (s *CatalogService) List(ctx context.Context) ([]*models.Game, error) {
	var cached []*models.Game
	found, err := s.cache.Get(catalogCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read catalog cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	games, err := s.repo.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	if err := s.cache.Set(catalogCacheKey, games, time.Hour); err != nil {
		s.log.Warn("failed to cache catalog", slog.Any("err", err))
	}
	return games, nil
}

// Get возвращает игру по ID.
func (s *CatalogService) Get(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.repo.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}
