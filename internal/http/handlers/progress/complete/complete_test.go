package complete

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/http/middlewarectx"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) MarkCompleted(ctx context.Context, userUID string, gameID int) (*models.ProgressRecord, error) {
	args := m.Called(ctx, userUID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressRecord), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(uid, gameID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/"+gameID+"/complete", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("gameID", gameID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if uid != "" {
		ctx = context.WithValue(ctx, middlewarectx.UserUID, uid)
	}
	return req.WithContext(ctx)
}

func TestCompleteHandler_ServeHTTP(t *testing.T) {
	const uid = "11111111-2222-3333-4444-555555555555"

	t.Run("marks game completed", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("MarkCompleted", mock.Anything, uid, 3).Return(&models.ProgressRecord{
			UserUID: uid, GameID: 3, Status: models.StatusCompleted,
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest(uid, "3"))

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("non-numeric game id is a bad request", func(t *testing.T) {
		service := new(ServiceMock)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest(uid, "abc"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing game maps to not found", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("MarkCompleted", mock.Anything, uid, 99).Return(nil, apperr.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest(uid, "99"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing user is unauthorized", func(t *testing.T) {
		service := new(ServiceMock)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest("", "3"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
