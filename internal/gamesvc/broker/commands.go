package broker

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/avvvet/sus-services/internal/comm"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// registry maps every command type to its handler. It is built once and
// never changes afterwards.
func (b *Broker) registry() map[string]handlerFunc {
	return map[string]handlerFunc{
		"group-create":    b.groupCreate,
		"message-create":  b.messageCreate,
		"start":           b.start,
		"vote":            b.vote,
		"open-votes":      b.openVotes,
		"close-votes":     b.closeVotes,
		"cancel":          b.cancel,
		"remaining-votes": b.remainingVotes,
		"set-role":        b.setRole,
		"set-language":    b.setLanguage,
		"scoreboard":      b.scoreboard,
		"games":           b.games,
		"game":            b.game,
	}
}

func (b *Broker) groupCreate(ctx context.Context, _ *models.Group, _ models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.GroupCreate
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	grp, err := b.services.Groups.Ensure(ctx, req.GroupID, req.Locale)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{Data: grp}, nil
}

func (b *Broker) messageCreate(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.ChatMessage
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	placed, err := b.services.Games.HandleMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	reply := &comm.Reply{Data: comm.PlacementData{Placed: placed}}
	if placed {
		reply.Message = messages.Format(lang, messages.PlacementNoticed, nil)
	}
	return reply, nil
}

func (b *Broker) start(ctx context.Context, _ *models.Group, _ models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.StartRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	game, err := b.services.Games.StartGame(ctx, req.GroupID, req.HostID, req.ChannelID)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{Data: ref(game)}, nil
}

func (b *Broker) vote(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.VoteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	receipt, err := b.services.Votes.SubmitVote(ctx, req.GroupID, req.VoterID, req.AccusedID, req.Word)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{
		Message: messages.Format(lang, messages.VoteRegistered, nil),
		Data: comm.VoteData{
			Count:    receipt.Count,
			Players:  receipt.Players,
			Resolved: receipt.Resolved,
		},
	}, nil
}

func (b *Broker) openVotes(ctx context.Context, _ *models.Group, _ models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.HostRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	game, err := b.services.Games.OpenVoting(ctx, req.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{Data: ref(game)}, nil
}

func (b *Broker) closeVotes(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.HostRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	res, err := b.services.Votes.CloseEarly(ctx, req.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{
		Message: messages.Format(lang, messages.VotesClosed, nil),
		Data:    ref(res.Game),
	}, nil
}

func (b *Broker) cancel(ctx context.Context, _ *models.Group, _ models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.HostRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	game, err := b.services.Games.Cancel(ctx, req.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	return &comm.Reply{Data: ref(game)}, nil
}

func (b *Broker) remainingVotes(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.GroupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	voters, err := b.services.Votes.RemainingVoters(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	reply := &comm.Reply{Data: comm.RemainingData{Voters: voters}}
	if len(voters) == 0 {
		reply.Message = messages.Format(lang, messages.RemainingNone, nil)
		return reply, nil
	}
	mentions := make([]string, len(voters))
	for i, v := range voters {
		mentions[i] = messages.Mention(v)
	}
	reply.Message = messages.Format(lang, messages.RemainingVoters, map[string]string{
		"voters": strings.Join(mentions, ", "),
	})
	return reply, nil
}

func (b *Broker) setRole(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.SetRoleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if err := b.services.Groups.SetRole(ctx, req.GroupID, req.RoleID); err != nil {
		return nil, err
	}
	return &comm.Reply{
		Message: messages.Format(lang, messages.RoleSet, map[string]string{"role": messages.RoleMention(req.RoleID)}),
	}, nil
}

func (b *Broker) setLanguage(ctx context.Context, _ *models.Group, _ models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.SetLanguageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	lang, err := b.services.Groups.SetLanguage(ctx, req.GroupID, req.Language)
	if err != nil {
		return nil, err
	}
	// Confirmed in the new language.
	return &comm.Reply{Message: messages.Format(lang, messages.LanguageSet, nil)}, nil
}

func (b *Broker) scoreboard(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.GroupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	standings, err := b.services.Queries.Scoreboard(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	reply := &comm.Reply{Data: comm.ScoreboardData{Standings: standings}}
	if len(standings) == 0 {
		reply.Message = messages.Format(lang, messages.NoScores, nil)
		return reply, nil
	}
	lines := []string{messages.Format(lang, messages.ScoreboardTitle, nil)}
	for _, s := range standings {
		lines = append(lines, messages.Format(lang, messages.ScoreboardRow, map[string]string{
			"rank":   strconv.Itoa(s.Rank),
			"user":   messages.Mention(s.UserID),
			"points": strconv.Itoa(s.Score),
		}))
	}
	reply.Message = strings.Join(lines, "\n")
	return reply, nil
}

func (b *Broker) games(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.GamesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	page, err := b.services.Queries.GamesPage(ctx, req.GroupID, req.Page)
	if err != nil {
		return nil, err
	}

	reply := &comm.Reply{Data: page}
	if page.Total == 0 {
		reply.Message = messages.Format(lang, messages.GamesEmpty, nil)
		return reply, nil
	}
	lines := []string{messages.Format(lang, messages.GamesTitle, map[string]string{"guild": req.GroupID})}
	for _, g := range page.Games {
		lines = append(lines, messages.Format(lang, messages.GamesRow, map[string]string{
			"id":   strconv.FormatInt(g.ID, 10),
			"word": g.Word,
		}))
	}
	lines = append(lines, messages.Format(lang, messages.GamesFooter, map[string]string{
		"page":  strconv.Itoa(page.Page),
		"pages": strconv.Itoa(page.Pages),
	}))
	reply.Message = strings.Join(lines, "\n")
	return reply, nil
}

// game shows a finished game of the group. Running games are not revealed.
func (b *Broker) game(ctx context.Context, _ *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error) {
	var req comm.GameRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	game, err := b.services.Queries.Game(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if game.GuildID != req.GroupID || !game.Status.Terminal() {
		return nil, models.ErrGameNotFound
	}
	return &comm.Reply{
		Message: messages.Format(lang, messages.GameDetails, map[string]string{
			"id":     strconv.FormatInt(game.ID, 10),
			"status": string(game.Status),
			"sus":    messages.Mention(game.ImposterID),
			"word":   game.Word,
		}),
		Data: game,
	}, nil
}

func ref(g *models.Game) comm.GameRef {
	return comm.GameRef{ID: g.ID, Status: g.Status}
}
