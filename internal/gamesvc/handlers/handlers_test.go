package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/suite"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/service"
	"github.com/avvvet/sus-services/internal/gamesvc/store/memory"
)

type HandlerSuite struct {
	suite.Suite
	router  *chi.Mux
	handler *Handler
	token   string
	cache   *cache.Cache
	game    *models.Game
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	s.cache = cache.New(memory.New())

	_, err := s.cache.EnsureGroup(ctx, "g1", models.LanguageEnglish)
	s.Require().NoError(err)
	s.game, err = s.cache.CreateGame(ctx, models.NewGame{GuildID: "g1", ChannelID: "c1", HostID: "h", ImposterID: "sus", Word: "pear"})
	s.Require().NoError(err)
	s.game, err = s.cache.CancelGame(ctx, s.game.ID)
	s.Require().NoError(err)
	_, err = s.cache.IncrementScore(ctx, "g1", "bob", 4)
	s.Require().NoError(err)

	s.handler = NewHandler(service.NewQueryService(s.cache), "8080")
	s.handler.InitAuth("test-secret")
	s.token, err = s.handler.Token("test", time.Hour)
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	s.handler.SetRoutes(s.router)
}

func (s *HandlerSuite) get(path string, auth bool) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var rsp Response
	if rec.Header().Get("Content-Type") == "application/json" {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rsp))
	}
	return rec, rsp
}

func (s *HandlerSuite) TestHealthIsPublic() {
	rec, rsp := s.get("/v1/health", false)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rsp.Message, "8080")
}

func (s *HandlerSuite) TestQueriesRequireToken() {
	for _, path := range []string{"/v1/games/1", "/v1/groups/g1/scores", "/v1/groups/g1/games"} {
		rec, _ := s.get(path, false)
		s.Equal(http.StatusUnauthorized, rec.Code, path)
	}
}

func (s *HandlerSuite) TestGetGame() {
	rec, rsp := s.get("/v1/games/"+strconv.FormatInt(s.game.ID, 10), true)
	s.Require().Equal(http.StatusOK, rec.Code)
	game := rsp.Data.(map[string]interface{})
	s.Equal("pear", game["word"])
	s.Equal(string(models.StatusCancelled), game["status"])

	rec, rsp = s.get("/v1/games/99", true)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("game-not-found", rsp.Error)

	rec, _ = s.get("/v1/games/abc", true)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetScores() {
	rec, rsp := s.get("/v1/groups/g1/scores", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	standings := rsp.Data.(map[string]interface{})["standings"].([]interface{})
	s.Require().Len(standings, 1)
	s.Equal("bob", standings[0].(map[string]interface{})["user"])
}

func (s *HandlerSuite) TestGetGamesPage() {
	rec, rsp := s.get("/v1/groups/g1/games?page=3", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	page := rsp.Data.(map[string]interface{})
	s.EqualValues(1, page["page"])
	s.EqualValues(1, page["total"])

	rec, _ = s.get("/v1/groups/g1/games?page=x", true)
	s.Equal(http.StatusBadRequest, rec.Code)
}
