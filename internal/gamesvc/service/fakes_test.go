package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
)

type fakeRoles struct {
	mu      sync.Mutex
	members map[string][]string // role -> members
	err     error
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{members: make(map[string][]string)}
}

func (f *fakeRoles) set(role string, members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[role] = members
}

func (f *fakeRoles) Members(ctx context.Context, group, role string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	m, ok := f.members[role]
	return append([]string(nil), m...), ok, nil
}

type fakeWords struct {
	word string
	err  error
}

func (f *fakeWords) Word(ctx context.Context, lang models.Language) (string, error) {
	return f.word, f.err
}

type fixedRandom int

func (r fixedRandom) IntN(n int) int { return int(r) % n }

var errDMClosed = errors.New("cannot send messages to this user")

type fakeNotifier struct {
	mu     sync.Mutex
	next   int
	sent   []notify.Sent
	edits  []notify.Sent
	voids  []notify.Sent
	refuse map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{refuse: make(map[string]bool)}
}

func (f *fakeNotifier) Send(ctx context.Context, to notify.Destination, text string) (notify.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuse[to.ID] {
		return notify.Sent{}, errDMClosed
	}
	f.next++
	msg := notify.Sent{To: to, MessageID: strconv.Itoa(f.next), Text: text}
	f.sent = append(f.sent, msg)
	return msg, nil
}

func (f *fakeNotifier) Edit(ctx context.Context, msg notify.Sent, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.Text = text
	f.edits = append(f.edits, msg)
	return nil
}

func (f *fakeNotifier) Void(ctx context.Context, msg notify.Sent, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.Text = note
	f.voids = append(f.voids, msg)
	return nil
}

// voided returns who had a message voided, in order.
func (f *fakeNotifier) voided() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, m := range f.voids {
		ids = append(ids, m.To.ID)
	}
	return ids
}

// to returns the texts sent to a destination, in order.
func (f *fakeNotifier) to(d notify.Destination) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, m := range f.sent {
		if m.To == d {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

func (f *fakeNotifier) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}
