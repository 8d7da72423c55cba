package progress

import (
	"context"
	"database/sql"
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

func (m *RepoMock) UpsertProgress(ctx context.Context, userUID string, gameID int, status string, now time.Time) (*models.ProgressRecord, error) {
	args := m.Called(ctx, userUID, gameID, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressRecord), args.Error(1)
}
func (m *RepoMock) ListProgressByUser(ctx context.Context, userUID string) ([]*models.ProgressRecord, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProgressRecord), args.Error(1)
}
func (m *RepoMock) GetGame(ctx context.Context, id int) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}
func (m *RepoMock) ListPreferences(ctx context.Context, userUID string) ([]*models.UserPreference, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserPreference), args.Error(1)
}
func (m *RepoMock) UpsertPreference(ctx context.Context, pref models.UserPreference) (int, error) {
	args := m.Called(ctx, pref)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const userUID = "11111111-2222-3333-4444-555555555555"

func TestProgressService_Upsert(t *testing.T) {
	game := &models.Game{ID: 2, Name: "Laberinto", Category: "puzzle"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		gameID     int
		status     string
		wantErr    error
	}{
		{
			name: "creates record and invalidates recommendations",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("GetGame", mock.Anything, 2).Return(game, nil).Once()
				r.On("UpsertProgress", mock.Anything, userUID, 2, models.StatusPlaying, mock.Anything).
					Return(&models.ProgressRecord{UserUID: userUID, GameID: 2, Status: models.StatusPlaying}, nil).Once()
				c.On("Invalidate", "recommendations:"+userUID).Return(nil).Once()
			},
			gameID: 2,
			status: models.StatusPlaying,
		},
		{
			name:       "unknown status is a validation error",
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			gameID:     2,
			status:     "paused",
			wantErr:    apperr.ErrValidation,
		},
		{
			name: "missing game maps to not found",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetGame", mock.Anything, 99).Return(nil, sql.ErrNoRows).Once()
			},
			gameID:  99,
			status:  models.StatusWishlist,
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := New(repo, cache, newNoopLogger())

			rec, err := svc.Upsert(context.Background(), userUID, tt.gameID, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.status, rec.Status)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestProgressService_MarkCompleted(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetGame", mock.Anything, 3).Return(&models.Game{ID: 3}, nil).Once()
	repo.On("UpsertProgress", mock.Anything, userUID, 3, models.StatusCompleted, mock.Anything).
		Return(&models.ProgressRecord{UserUID: userUID, GameID: 3, Status: models.StatusCompleted}, nil).Once()
	cache.On("Invalidate", "recommendations:"+userUID).Return(nil).Once()

	rec, err := New(repo, cache, newNoopLogger()).MarkCompleted(context.Background(), userUID, 3)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, rec.Status)
	repo.AssertExpectations(t)
}

func TestProgressService_SetPreference(t *testing.T) {
	t.Run("defaults weight to one", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("UpsertPreference", mock.Anything, mock.MatchedBy(func(p models.UserPreference) bool {
			return p.Weight == 1.0 && p.PreferenceType == "genre" && p.PreferenceValue == "puzzle"
		})).Return(5, nil).Once()
		cache.On("Invalidate", "recommendations:"+userUID).Return(nil).Once()

		id, err := New(repo, cache, newNoopLogger()).SetPreference(context.Background(), models.UserPreference{
			UserUID: userUID, PreferenceType: "genre", PreferenceValue: "puzzle",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, id)
		repo.AssertExpectations(t)
	})

	t.Run("empty type is a validation error", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		_, err := New(repo, cache, newNoopLogger()).SetPreference(context.Background(), models.UserPreference{
			UserUID: userUID, PreferenceValue: "puzzle",
		})

		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "UpsertPreference", mock.Anything, mock.Anything)
	})
}
