package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/comm"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/service"
)

const (
	// ResponseTopic receives replies to commands published without a reply subject.
	ResponseTopic = "game.service"
	// HeartbeatTopic receives the periodic liveness beacon of the service.
	HeartbeatTopic = "service.heartbeat"

	commandTimeout = 30 * time.Second
	drainPoll      = 50 * time.Millisecond
)

// Services bundles what the command handlers drive.
type Services struct {
	Groups  *service.GroupService
	Games   *service.GameService
	Votes   *service.VoteService
	Queries *service.QueryService
}

type handlerFunc func(ctx context.Context, grp *models.Group, lang models.Language, data json.RawMessage) (*comm.Reply, error)

type Broker struct {
	Conn     *nats.Conn
	services Services
	handlers map[string]handlerFunc
	publish  func(subject string, payload []byte) error
	inflight sync.WaitGroup
}

func NewBroker(nc *nats.Conn, s Services) *Broker {
	b := &Broker{
		Conn:     nc,
		services: s,
	}
	if nc != nil {
		b.publish = nc.Publish
	}
	b.handlers = b.registry()
	return b
}

// handleMessage is the subscription callback. Commands run concurrently;
// the services serialize what touches the same group or game.
func (b *Broker) handleMessage(msg *nats.Msg) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.process(msg)
	}()
}

// handles message coming from the chat gateway
func (b *Broker) process(msg *nats.Msg) {
	env := &comm.WSMessage{}
	if err := json.Unmarshal(msg.Data, env); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	reply := b.dispatch(ctx, env)

	subject := msg.Reply
	if subject == "" {
		subject = ResponseTopic
	}
	if err := b.respond(subject, env, reply); err != nil {
		log.Errorf("Error replying to %s: %s", env.Type, err)
	}
}

// Wait blocks until every command taken so far was answered. Call it once
// no more messages can arrive.
func (b *Broker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain stops sub from taking new commands and waits for the ones already
// taken to be answered.
func (b *Broker) Drain(ctx context.Context, sub *nats.Subscription) error {
	if err := sub.Drain(); err != nil {
		return err
	}
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for sub.IsValid() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return b.Wait(ctx)
}

// dispatch runs the handler registered for the message type.
func (b *Broker) dispatch(ctx context.Context, env *comm.WSMessage) comm.Reply {
	h, ok := b.handlers[env.Type]
	if !ok {
		log.Errorf("Unknown message %q", env.Type)
		return comm.Reply{Reason: "unknown-command"}
	}

	var target struct {
		GroupID string `json:"group"`
	}
	if err := json.Unmarshal(env.Data, &target); err != nil {
		log.Errorf("Error decoding %s: %s", env.Type, err)
		return comm.Reply{Reason: "bad-request"}
	}

	var grp *models.Group
	if target.GroupID != "" {
		var err error
		grp, err = b.services.Groups.Lookup(ctx, target.GroupID)
		if err != nil {
			return b.reject(env.Type, nil, models.DefaultLanguage, err)
		}
	}
	lang := models.DefaultLanguage
	if grp != nil {
		lang = grp.Language
	}

	reply, err := h(ctx, grp, lang, env.Data)
	if err != nil {
		return b.reject(env.Type, grp, lang, err)
	}
	reply.OK = true
	return *reply
}

func (b *Broker) reject(command string, grp *models.Group, lang models.Language, err error) comm.Reply {
	reason := models.Reason(err)
	fields := log.Fields{"command": command}
	if grp != nil {
		fields["group"] = grp.ID
	}
	if reason == "system-error" {
		log.WithFields(fields).Errorf("command failed: %v", err)
	} else {
		log.WithFields(fields).Debugf("command rejected: %v", err)
	}
	return comm.Reply{
		Reason:  reason,
		Message: messages.ForError(lang, err, rejectionVars(grp, err)),
	}
}

// rejectionVars fills the placeholders rejection messages refer to.
func rejectionVars(grp *models.Group, err error) map[string]string {
	vars := make(map[string]string)
	if grp != nil && grp.RoleID != "" {
		vars["role"] = messages.RoleMention(grp.RoleID)
	}
	var already *models.AlreadyVotedError
	if errors.As(err, &already) {
		vars["voted"] = messages.Mention(already.Existing.AccusedID)
	}
	var notified *models.NotificationError
	if errors.As(err, &notified) {
		vars["tag"] = messages.Mention(notified.UserID)
	}
	return vars
}

func (b *Broker) respond(subject string, env *comm.WSMessage, reply comm.Reply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(&comm.WSMessage{
		Type:     env.Type + "-response",
		Data:     data,
		SocketId: env.SocketId,
	})
	if err != nil {
		return err
	}
	return b.Publish(subject, payload)
}

// Heartbeat publishes a liveness beacon every interval until ctx is done.
func (b *Broker) Heartbeat(ctx context.Context, instanceID string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		payload, err := json.Marshal(comm.ServiceHeartbeat{ID: instanceID, Timestamp: time.Now().UTC()})
		if err == nil {
			_ = b.Publish(HeartbeatTopic, payload)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// consume commands from the chat gateway. The cache is only authoritative
// with one consumer, so this is a plain subscription, never a queue group.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
