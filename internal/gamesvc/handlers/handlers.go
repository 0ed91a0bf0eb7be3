package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/comm"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	queries   *service.QueryService
	port      string
}

func NewHandler(queries *service.QueryService, port string) *Handler {
	return &Handler{queries: queries, port: port}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("unable to encode response: %s", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrGameNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrStore):
		code = http.StatusServiceUnavailable
	}
	if code >= http.StatusInternalServerError {
		log.Errorf("query failed: %s", err)
	}
	h.CreateResponse(w, Response{Code: code, Error: models.Reason(err)})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "game service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid game id"})
		return
	}

	game, err := h.queries.Game(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: game})
}

func (h *Handler) getScores(w http.ResponseWriter, r *http.Request) {
	standings, err := h.queries.Scoreboard(r.Context(), chi.URLParam(r, "group"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: comm.ScoreboardData{Standings: standings}})
}

func (h *Handler) getGamesPage(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid page"})
			return
		}
		page = n
	}

	games, err := h.queries.GamesPage(r.Context(), chi.URLParam(r, "group"), page)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: games})
}
