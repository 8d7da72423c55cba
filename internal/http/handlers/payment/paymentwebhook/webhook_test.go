package paymentwebhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pixelpick/pixelpick-backend/internal/paymentprovider"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Reconcile(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	const secret = "whsec_test"
	eventBody := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","status":"succeeded"}}}`)

	t.Run("valid signature is processed", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Reconcile", mock.Anything, mock.MatchedBy(func(ev *paymentprovider.WebhookEvent) bool {
			return ev.Type == paymentprovider.EventPaymentSucceeded && ev.Data.Object.ID == "pi_123"
		})).Return(nil).Once()

		handler := New(newNoopLogger(), service, secret)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(eventBody))
		req.Header.Set("X-Api-Signature", signBody(secret, eventBody))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		service := new(ServiceMock)
		handler := New(newNoopLogger(), service, secret)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(eventBody))
		req.Header.Set("X-Api-Signature", "bm90LWEtc2lnbmF0dXJl")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		service.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		service := new(ServiceMock)
		handler := New(newNoopLogger(), service, secret)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(eventBody))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty secret skips signature check", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Reconcile", mock.Anything, mock.Anything).Return(nil).Once()

		handler := New(newNoopLogger(), service, "")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(eventBody))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("malformed payload is a bad request", func(t *testing.T) {
		service := new(ServiceMock)
		body := []byte("not json")
		handler := New(newNoopLogger(), service, secret)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
		req.Header.Set("X-Api-Signature", signBody(secret, body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
