// Package paymentstatus реализует HTTP-обработчик чтения статуса платежа
// по идентификатору платёжного намерения.
package paymentstatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/http/middlewarectx"
	"github.com/pixelpick/pixelpick-backend/internal/http/response"
	"github.com/pixelpick/pixelpick-backend/internal/lib/sl"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения платежа.
type Service interface {
	PaymentStatus(ctx context.Context, intentID string) (*models.Transaction, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid is missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	intentID := chi.URLParam(r, "intentID")
	if intentID == "" {
		log.Error("intent id is missing in url")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("intent id is required"))
		return
	}

	tx, err := h.service.PaymentStatus(r.Context(), intentID)
	if err != nil {
		log.Error("failed to read payment status", sl.Err(err))
		render.Status(r, apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	// Чужие платежи не раскрываем.
	if tx.UserUID != uid {
		log.Error("payment belongs to another user", slog.String("intent_id", intentID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"intent_id": tx.PaymentIntentID,
		"status":    tx.Status,
		"amount":    tx.Amount,
		"currency":  tx.Currency,
	}))
}
