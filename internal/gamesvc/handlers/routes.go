package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/games/{id}", h.getGame)
			r.Get("/groups/{group}/scores", h.getScores)
			r.Get("/groups/{group}/games", h.getGamesPage)
		})
	})
}

func (h *Handler) InitAuth(secret string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	tokenString, err := h.Token("gamesvc", 7*24*time.Hour)
	if err != nil {
		log.Errorf("unable to issue debug token: %s", err)
		return
	}
	log.Debugf("DEBUG: JWT for testing expires soon : %s", tokenString)
}

// Token issues a service token valid for ttl.
func (h *Handler) Token(serviceID string, ttl time.Duration) (string, error) {
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": serviceID,
		"exp":        time.Now().Add(ttl).Unix(),
	})
	return tokenString, err
}
