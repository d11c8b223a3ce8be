package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// PlaceholderText is shown in place of the assistant reply while a send
// is in flight.
const PlaceholderText = "Thinking…"

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrNoSession      = errors.New("no current session")
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownMode    = errors.New("unknown mode")
)

// Manager orchestrates the registry, store and dispatcher: it applies
// the optimistic half of a send synchronously, reconciles the reply
// asynchronously by session id, and writes a full snapshot through the
// store after every mutation. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	reg      *Registry
	store    Store
	dispatch Dispatcher
	input    string
	log      *zap.Logger
}

func NewManager(store Store, dispatch Dispatcher, presets Presets, log *zap.Logger) *Manager {
	return &Manager{
		reg:      NewRegistry(presets),
		store:    store,
		dispatch: dispatch,
		log:      log,
	}
}

// Bootstrap loads the persisted snapshot, treating read errors and
// corrupt data as "no prior state", and seeds defaults when needed.
func (m *Manager) Bootstrap(ctx context.Context) {
	snap, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn("snapshot load failed, starting fresh", zap.Error(err))
		snap = nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg.Bootstrap(snap)
	m.persistLocked(ctx)
}

// Exchange is the handle of one in-flight question/reply round trip.
// It pins the issuing session by id so the reply lands there even if
// the user has switched or deleted sessions in the meantime.
type Exchange struct {
	SessionID string
	index     int
	done      chan struct{}
	reply     string
}

// Reply blocks until the exchange settles.
func (e *Exchange) Reply(ctx context.Context) (string, error) {
	select {
	case <-e.done:
		return e.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Send runs the optimistic phase synchronously: append the trimmed user
// message and a placeholder, finalize the title on the first real
// message, clear the input buffer, persist. The dispatch then runs in
// the background; the returned Exchange settles when it reconciles.
// Empty input and a missing current session are no-ops.
func (m *Manager) Send(ctx context.Context, text string) (*Exchange, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return nil, ErrEmptyInput
	}

	m.mu.Lock()
	sess := m.reg.Current()
	if sess == nil {
		m.mu.Unlock()
		return nil, ErrNoSession
	}
	sess.Messages = append(sess.Messages,
		Message{Sender: SenderUser, Text: question},
		Message{Sender: SenderAssistant, Text: PlaceholderText},
	)
	if !sess.TitleFinalized {
		sess.Title = Summarize(question, sess.Mode)
		sess.TitleFinalized = true
	}
	m.input = ""
	ex := &Exchange{
		SessionID: sess.ID,
		index:     len(sess.Messages) - 1,
		done:      make(chan struct{}),
	}
	mode := sess.Mode
	m.persistLocked(ctx)
	m.mu.Unlock()

	// The round trip outlives the caller's request; no cancellation.
	bg := context.WithoutCancel(ctx)
	go func() {
		reply := m.dispatch.Send(bg, question, mode)
		m.settle(bg, ex, reply)
	}()
	return ex, nil
}

// settle replaces the placeholder identified by the exchange handle.
// A reply whose session was deleted while in flight is dropped.
func (m *Manager) settle(ctx context.Context, ex *Exchange, reply string) {
	m.mu.Lock()
	sess := m.reg.Get(ex.SessionID)
	switch {
	case sess == nil:
		m.log.Debug("reply for deleted session dropped", zap.String("session_id", ex.SessionID))
	case ex.index < len(sess.Messages):
		sess.Messages[ex.index] = Message{Sender: SenderAssistant, Text: reply}
		m.persistLocked(ctx)
	}
	ex.reply = reply
	m.mu.Unlock()
	close(ex.done)
}

func (m *Manager) CreateSession(ctx context.Context, mode Mode) (*ChatSession, error) {
	if !mode.Valid() {
		return nil, ErrUnknownMode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.reg.Create(mode)
	m.input = ""
	m.persistLocked(ctx)
	return copySession(s), nil
}

func (m *Manager) SelectSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.reg.Select(id) {
		return ErrUnknownSession
	}
	m.input = ""
	m.persistLocked(ctx)
	return nil
}

func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.reg.Delete(id) {
		return ErrUnknownSession
	}
	m.persistLocked(ctx)
	return nil
}

// Current returns a copy of the current session, or nil when none can
// be resolved.
func (m *Manager) Current() *ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.reg.Current(); s != nil {
		return copySession(s)
	}
	return nil
}

func (m *Manager) SessionsByMode(mode Mode) []*ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.ByMode(mode)
}

func (m *Manager) ActiveMode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.ActiveMode()
}

// State returns a deep copy of the full collection and selection
// pointers, in display order.
func (m *Manager) State() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Snapshot()
}

// SetInput and Input expose the live draft buffer of the host UI.
func (m *Manager) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = text
}

func (m *Manager) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// persistLocked writes the current snapshot through the store. Save
// failures are logged, never surfaced; the in-memory state stays
// authoritative.
func (m *Manager) persistLocked(ctx context.Context) {
	if err := m.store.Save(ctx, m.reg.Snapshot()); err != nil {
		m.log.Error("snapshot save failed", zap.Error(err))
	}
}
