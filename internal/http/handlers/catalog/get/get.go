// Package get реализует HTTP-обработчик карточки игры.
package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/http/response"
	"github.com/pixelpick/pixelpick-backend/internal/lib/sl"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения одной игры.
type Service interface {
	Get(ctx context.Context, id int) (*models.Game, error)
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
	const op = "handlers.catalog.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	gameID, err := strconv.Atoi(chi.URLParam(r, "gameID"))
	if err != nil {
		log.Error("failed to decode game id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode game id from url"))
		return
	}

	game, err := h.service.Get(r.Context(), gameID)
	if err != nil {
		log.Error("failed to get game", sl.Err(err))
		render.Status(r, apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("game found", slog.Int("game_id", gameID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"game": game,
	}))
}
