package notify

import (
	"context"
	"errors"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindChannel Kind = "channel"
)

var ErrUndeliverable = errors.New("message could not be delivered")

// Destination is a user's direct messages or a group channel.
type Destination struct {
	Kind Kind
	ID   string
}

func User(id string) Destination    { return Destination{Kind: KindUser, ID: id} }
func Channel(id string) Destination { return Destination{Kind: KindChannel, ID: id} }

// Sent identifies a delivered message so it can be edited later.
type Sent struct {
	To        Destination
	MessageID string
	Text      string
}

// Notifier delivers text to chat users and channels. Text uses the markup
// of the message catalog (**bold**, ~~strike~~, __underline__, <@user>
// mentions); each notifier renders it for its platform.
type Notifier interface {
	Send(ctx context.Context, to Destination, text string) (Sent, error)
	Edit(ctx context.Context, msg Sent, text string) error
	// Void marks a delivered message as no longer valid and appends note.
	Void(ctx context.Context, msg Sent, note string) error
}
