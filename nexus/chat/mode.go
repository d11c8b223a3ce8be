package chat

import (
	"github.com/magiconair/properties"
	"go.uber.org/zap"
)

// Mode is the conversational domain of a session. It decides which
// backend the dispatcher talks to and which seed texts a session gets.
// A session's mode never changes after creation.
type Mode string

const (
	ModeScheduling Mode = "scheduling"
	ModeDocumentQA Mode = "document-qa"
)

// Modes returns all known modes in seeding order.
func Modes() []Mode {
	return []Mode{ModeScheduling, ModeDocumentQA}
}

// ParseMode maps a wire string onto the closed mode set.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeScheduling:
		return ModeScheduling, true
	case ModeDocumentQA:
		return ModeDocumentQA, true
	}
	return "", false
}

func (m Mode) Valid() bool {
	_, ok := ParseMode(string(m))
	return ok
}

// GenericTitle is the default label of a bootstrapped session and the
// summarizer fallback for empty input.
func (m Mode) GenericTitle() string {
	switch m {
	case ModeDocumentQA:
		return "Document Q&A Chat"
	default:
		return "Scheduling Chat"
	}
}

// NewChatTitle is the placeholder label of an explicitly created session.
func (m Mode) NewChatTitle() string {
	switch m {
	case ModeDocumentQA:
		return "New Document Q&A Chat"
	default:
		return "New Scheduling Chat"
	}
}

// Preset holds the assistant seed texts for one mode.
type Preset struct {
	WelcomeText string // greeting of a bootstrapped/reseeded session
	NewChatText string // greeting of an explicitly created session
}

type Presets map[Mode]Preset

func DefaultPresets() Presets {
	return Presets{
		ModeScheduling: {
			WelcomeText: "Welcome to the radiology assistant. How can I help you today?",
			NewChatText: "New scheduling conversation. How can I help?",
		},
		ModeDocumentQA: {
			WelcomeText: "Document Q&A mode enabled. Ask about uploaded files.",
			NewChatText: "New document Q&A conversation. Ask about uploaded files.",
		},
	}
}

// For never returns a zero preset for a known mode.
func (p Presets) For(mode Mode) Preset {
	if preset, ok := p[mode]; ok {
		return preset
	}
	return DefaultPresets()[mode]
}

// LoadPresets overlays seed texts from a .properties file onto the coded
// defaults. Keys are "<mode>.welcome_text" and "<mode>.new_chat_text".
// A missing or unreadable file falls back to the defaults.
func LoadPresets(path string, log *zap.Logger) Presets {
	presets := DefaultPresets()
	if path == "" {
		return presets
	}
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		log.Warn("presets file not loaded, using defaults", zap.String("path", path), zap.Error(err))
		return presets
	}
	for _, mode := range Modes() {
		preset := presets[mode]
		preset.WelcomeText = props.GetString(string(mode)+".welcome_text", preset.WelcomeText)
		preset.NewChatText = props.GetString(string(mode)+".new_chat_text", preset.NewChatText)
		presets[mode] = preset
	}
	return presets
}
