package get

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
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Get(ctx context.Context, id int) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(gameID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/"+gameID, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("gameID", gameID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetHandler_ServeHTTP(t *testing.T) {
	t.Run("returns game", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Get", mock.Anything, 3).Return(&models.Game{
			ID: 3, Name: "Laberinto", Category: "puzzle",
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest("3"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Laberinto")
		service.AssertExpectations(t)
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		service := new(ServiceMock)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest("abc"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "Get")
	})

	t.Run("unknown game is a 404", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Get", mock.Anything, 99).Return(nil, apperr.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(rec, newRequest("99"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		service.AssertExpectations(t)
	})
}
