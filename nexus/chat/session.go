package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry of a session transcript. The list is append-only
// and insertion order is display order.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// ChatSession is one conversation thread, fixed to a single mode.
type ChatSession struct {
	ID   string `json:"id"`
	Mode Mode   `json:"mode"`
	// Title starts as a mode placeholder and is replaced exactly once,
	// after the first user message. TitleFinalized tracks that instead
	// of sniffing the title text, so user-looking titles never get
	// silently overwritten.
	Title          string    `json:"title"`
	TitleFinalized bool      `json:"titleFinalized"`
	CreatedAt      time.Time `json:"createdAt"`
	Messages       []Message `json:"messages"`
}

func newSession(mode Mode, title, seed string) *ChatSession {
	return &ChatSession{
		ID:        uuid.NewString(),
		Mode:      mode,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Messages:  []Message{{Sender: SenderAssistant, Text: seed}},
	}
}

func copySession(s *ChatSession) *ChatSession {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}

// Snapshot is the complete persisted state: every session plus the
// selection pointers. Each save is a full, self-consistent snapshot.
type Snapshot struct {
	Sessions         []*ChatSession `json:"sessions"`
	CurrentSessionID string         `json:"currentSessionId"`
	ActiveMode       Mode           `json:"activeMode"`
}

// Store is the persistence boundary. Load returns (nil, nil) when no
// prior state exists; implementations treat corrupt data the same way.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Dispatcher sends a question to the mode's backend and returns the
// reply text. Implementations never fail: transport and decoding
// problems come back as fixed sentinel replies.
type Dispatcher interface {
	Send(ctx context.Context, question string, mode Mode) string
}
