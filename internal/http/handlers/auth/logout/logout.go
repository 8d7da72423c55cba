// Package logout реализует выход из сессии. Токены сессии без состояния,
// поэтому сервер не хранит отозванные токены: клиент удаляет токен у себя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pixelpick/pixelpick-backend/internal/http/middlewarectx"
	"github.com/pixelpick/pixelpick-backend/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if uid, ok := middlewarectx.UserUIDFromContext(r.Context()); ok {
		log.Info("user logged out", slog.String("user_uid", uid))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out",
	}))
}
