package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/avvvet/sus-services/internal/comm"
)

const DefaultRolesSubject = "chat.roles"

var ErrLookupFailed = errors.New("role lookup failed")

// Requester is the request/reply half of a NATS connection.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NatsResolver asks the chat gateway who currently holds a role.
type NatsResolver struct {
	conn    Requester
	subject string
	timeout time.Duration
}

func NewNatsResolver(conn Requester, subject string) *NatsResolver {
	if subject == "" {
		subject = DefaultRolesSubject
	}
	return &NatsResolver{conn: conn, subject: subject, timeout: 10 * time.Second}
}

// Members returns the user ids holding role in group. found is false when
// the role no longer exists on the platform.
func (r *NatsResolver) Members(ctx context.Context, group, role string) (members []string, found bool, err error) {
	payload, err := json.Marshal(comm.RolesRequest{GroupID: group, RoleID: role})
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg, err := r.conn.RequestWithContext(ctx, r.subject, payload)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	var reply comm.RolesReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, false, fmt.Errorf("%w: decode reply: %v", ErrLookupFailed, err)
	}
	if reply.Error != "" {
		return nil, false, fmt.Errorf("%w: %s", ErrLookupFailed, reply.Error)
	}
	return reply.Members, reply.Found, nil
}
