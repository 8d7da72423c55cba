package catalog

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListGames(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}
func (m *RepoMock) GetGame(ctx context.Context, id int) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCatalogService_List(t *testing.T) {
	games := []*models.Game{
		{ID: 1, Name: "Bloques", Category: "puzzle"},
		{ID: 2, Name: "Carrera", Category: "racing"},
	}

	t.Run("cache miss loads from repository and caches", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "catalog:games", mock.Anything).Return(false, nil).Once()
		repo.On("ListGames", mock.Anything).Return(games, nil).Once()
		cache.On("Set", "catalog:games", games, time.Hour).Return(nil).Once()

		got, err := New(repo, cache, newNoopLogger()).List(context.Background())

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "catalog:games", mock.Anything).Return(true, nil).Once()

		_, err := New(repo, cache, newNoopLogger()).List(context.Background())

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "ListGames", mock.Anything)
	})

	t.Run("cache errors do not break listing", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "catalog:games", mock.Anything).Return(false, errors.New("redis down")).Once()
		repo.On("ListGames", mock.Anything).Return(games, nil).Once()
		cache.On("Set", "catalog:games", games, time.Hour).Return(errors.New("redis down")).Once()

		got, err := New(repo, cache, newNoopLogger()).List(context.Background())

		assert.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestCatalogService_Get(t *testing.T) {
	t.Run("missing game maps to not found", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetGame", mock.Anything, 42).Return(nil, sql.ErrNoRows).Once()

		_, err := New(repo, cache, newNoopLogger()).Get(context.Background(), 42)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
