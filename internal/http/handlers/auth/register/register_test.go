package register

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
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Register(ctx context.Context, email, firstName, lastName, password string) (string, error) {
	args := m.Called(ctx, email, firstName, lastName, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	const uid = "11111111-2222-3333-4444-555555555555"

	tests := []struct {
		name           string
		requestBody    any
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantStatus     string
	}{
		{
			name: "valid registration",
			requestBody: Request{
				Email:     "ana@example.com",
				FirstName: "Ana",
				LastName:  "Lopez",
				Password:  "password123",
			},
			setupMocks: func(s *ServiceMock) {
				s.On("Register", mock.Anything, "ana@example.com", "Ana", "Lopez", "password123").
					Return(uid, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name: "validation error - short password",
			requestBody: Request{
				Email:     "ana@example.com",
				FirstName: "Ana",
				LastName:  "Lopez",
				Password:  "short",
			},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name: "duplicate email",
			requestBody: Request{
				Email:     "ana@example.com",
				FirstName: "Ana",
				LastName:  "Lopez",
				Password:  "password123",
			},
			setupMocks: func(s *ServiceMock) {
				s.On("Register", mock.Anything, "ana@example.com", "Ana", "Lopez", "password123").
					Return("", apperr.ErrValidation).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			var body bytes.Buffer
			switch v := tt.requestBody.(type) {
			case string:
				body.WriteString(v)
			default:
				assert.NoError(t, json.NewEncoder(&body).Encode(v))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", &body)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])

			service.AssertExpectations(t)
		})
	}
}
