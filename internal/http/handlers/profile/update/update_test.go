package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/http/middlewarectx"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) UpdateNames(ctx context.Context, userUID, firstName, lastName string) (*models.User, error) {
	args := m.Called(ctx, userUID, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUpdateHandler_ServeHTTP(t *testing.T) {
	const uid = "11111111-2222-3333-4444-555555555555"

	tests := []struct {
		name           string
		withUser       bool
		requestBody    any
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
	}{
		{
			name:        "successful name change",
			withUser:    true,
			requestBody: Request{FirstName: "Maria", LastName: "Lopez"},
			setupMocks: func(s *ServiceMock) {
				s.On("UpdateNames", mock.Anything, uid, "Maria", "Lopez").Return(&models.User{
					UID: uid, FirstName: "Maria", LastName: "Lopez", NameChangeCount: 1,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "policy block maps to forbidden",
			withUser:    true,
			requestBody: Request{FirstName: "Maria", LastName: "Lopez"},
			setupMocks: func(s *ServiceMock) {
				s.On("UpdateNames", mock.Anything, uid, "Maria", "Lopez").
					Return(nil, &apperr.PolicyBlocked{DaysRemaining: 12}).Once()
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "missing user in context",
			withUser:       false,
			requestBody:    Request{FirstName: "Maria", LastName: "Lopez"},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty first name fails validation",
			withUser:       true,
			requestBody:    Request{LastName: "Lopez"},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", &body)
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, uid)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			service.AssertExpectations(t)
		})
	}
}
