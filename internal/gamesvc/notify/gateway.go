package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/avvvet/sus-services/internal/comm"
)

const DefaultNotifySubject = "chat.notify"

// Requester is the request/reply half of a NATS connection.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Gateway asks the chat gateway to deliver messages over NATS request/reply.
type Gateway struct {
	conn    Requester
	subject string
	timeout time.Duration
}

func NewGateway(conn Requester, subject string) *Gateway {
	if subject == "" {
		subject = DefaultNotifySubject
	}
	return &Gateway{conn: conn, subject: subject, timeout: 10 * time.Second}
}

func (g *Gateway) Send(ctx context.Context, to Destination, text string) (Sent, error) {
	reply, err := g.request(ctx, comm.NotifyRequest{
		Action: "send",
		Kind:   string(to.Kind),
		Target: to.ID,
		Text:   text,
	})
	if err != nil {
		return Sent{}, err
	}

	id := reply.MessageID
	if id == "" {
		// The gateway can still edit by our id when it kept none of its own.
		id = uuid.NewString()
	}
	return Sent{To: to, MessageID: id, Text: text}, nil
}

func (g *Gateway) Edit(ctx context.Context, msg Sent, text string) error {
	_, err := g.request(ctx, comm.NotifyRequest{
		Action:    "edit",
		Kind:      string(msg.To.Kind),
		Target:    msg.To.ID,
		MessageID: msg.MessageID,
		Text:      text,
	})
	return err
}

// Void strikes the message through; the gateway passes the markup on as is.
func (g *Gateway) Void(ctx context.Context, msg Sent, note string) error {
	return g.Edit(ctx, msg, fmt.Sprintf("**~~%s~~**\n__%s__", msg.Text, note))
}

func (g *Gateway) request(ctx context.Context, req comm.NotifyRequest) (*comm.NotifyReply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.conn.RequestWithContext(ctx, g.subject, payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", req.Action, req.Kind, req.Target, err)
	}

	reply := &comm.NotifyReply{}
	if err := json.Unmarshal(msg.Data, reply); err != nil {
		return nil, fmt.Errorf("decode notify reply: %w", err)
	}
	if !reply.OK {
		return nil, fmt.Errorf("%w: %s", ErrUndeliverable, reply.Error)
	}
	return reply, nil
}
