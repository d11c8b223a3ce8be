package chat

// Registry holds every session in memory, newest first, partitioned by
// mode, with at most one current session. It is not safe for concurrent
// use on its own; Manager serializes access.
type Registry struct {
	sessions   []*ChatSession
	currentID  string
	activeMode Mode
	presets    Presets
}

func NewRegistry(presets Presets) *Registry {
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Registry{activeMode: ModeScheduling, presets: presets}
}

// Bootstrap restores a persisted snapshot verbatim, or seeds the two
// default sessions when none exists. A stored current id that no longer
// resolves falls back to the first session.
func (r *Registry) Bootstrap(snap *Snapshot) {
	if snap == nil || len(snap.Sessions) == 0 {
		r.seedDefaults()
		return
	}
	r.sessions = snap.Sessions
	r.activeMode = snap.ActiveMode
	if !r.activeMode.Valid() {
		r.activeMode = ModeScheduling
	}
	r.currentID = snap.CurrentSessionID
	if r.Get(r.currentID) == nil {
		first := r.sessions[0]
		r.currentID = first.ID
		r.activeMode = first.Mode
	}
}

// seedDefaults creates one session per mode and selects the scheduling
// one, as on first run and after the last session is deleted.
func (r *Registry) seedDefaults() {
	r.sessions = nil
	for _, mode := range Modes() {
		s := newSession(mode, mode.GenericTitle(), r.presets.For(mode).WelcomeText)
		r.sessions = append(r.sessions, s)
	}
	r.currentID = r.sessions[0].ID
	r.activeMode = r.sessions[0].Mode
}

// Create prepends a session with a placeholder title and the mode's
// new-chat greeting, and makes it current. Multiple sessions per mode
// are expected; nothing is deduplicated.
func (r *Registry) Create(mode Mode) *ChatSession {
	if !mode.Valid() {
		return nil
	}
	s := newSession(mode, mode.NewChatTitle(), r.presets.For(mode).NewChatText)
	r.sessions = append([]*ChatSession{s}, r.sessions...)
	r.currentID = s.ID
	r.activeMode = mode
	return s
}

// Delete removes a session. When the current one goes, the first
// remaining session of the previous active mode takes over, else the
// first session of any mode. Deleting the last session reseeds the two
// defaults.
func (r *Registry) Delete(id string) bool {
	idx := -1
	for i, s := range r.sessions {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)
	if len(r.sessions) == 0 {
		r.seedDefaults()
		return true
	}
	if id != r.currentID {
		return true
	}
	next := r.firstOfMode(r.activeMode)
	if next == nil {
		next = r.sessions[0]
	}
	r.currentID = next.ID
	r.activeMode = next.Mode
	return true
}

// Select makes a session current and syncs the active mode to it.
// Unknown ids are ignored.
func (r *Registry) Select(id string) bool {
	s := r.Get(id)
	if s == nil {
		return false
	}
	r.currentID = s.ID
	r.activeMode = s.Mode
	return true
}

func (r *Registry) Get(id string) *ChatSession {
	if id == "" {
		return nil
	}
	for _, s := range r.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Current resolves the current session, falling back to the first
// session of the active mode, then the first session overall.
func (r *Registry) Current() *ChatSession {
	if s := r.Get(r.currentID); s != nil {
		return s
	}
	if s := r.firstOfMode(r.activeMode); s != nil {
		return s
	}
	if len(r.sessions) > 0 {
		return r.sessions[0]
	}
	return nil
}

func (r *Registry) firstOfMode(mode Mode) *ChatSession {
	for _, s := range r.sessions {
		if s.Mode == mode {
			return s
		}
	}
	return nil
}

// ByMode returns the sessions of one mode in their original relative
// order, as copies.
func (r *Registry) ByMode(mode Mode) []*ChatSession {
	var out []*ChatSession
	for _, s := range r.sessions {
		if s.Mode == mode {
			out = append(out, copySession(s))
		}
	}
	return out
}

func (r *Registry) ActiveMode() Mode {
	return r.activeMode
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// Snapshot deep-copies the full state for persistence or display.
func (r *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{
		Sessions:         make([]*ChatSession, 0, len(r.sessions)),
		CurrentSessionID: r.currentID,
		ActiveMode:       r.activeMode,
	}
	for _, s := range r.sessions {
		snap.Sessions = append(snap.Sessions, copySession(s))
	}
	return snap
}
