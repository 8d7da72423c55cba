// Package verify реализует подтверждение почты по одноразовому токену.
// Токен принимается как query-параметром (переход по ссылке из письма),
// так и в теле POST-запроса.
package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/http/response"
	"github.com/pixelpick/pixelpick-backend/internal/lib/sl"
)

// Request — входные данные для подтверждения почты
type Request struct {
	Token string `json:"token"`
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
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
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" && r.Body != nil {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		log.Error("verification token is missing")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("verification token is required"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		log.Error("email verification failed", sl.Err(err))
		render.Status(r, apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email verified successfully",
	}))
}
