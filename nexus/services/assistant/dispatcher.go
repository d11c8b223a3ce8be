package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nexus/nexus/chat"
	"nexus/nexus/utils/logging"

	"go.uber.org/zap"
)

// Sentinel replies. The manager renders these as ordinary assistant
// messages; no dispatch failure ever surfaces as an error.
const (
	ErrorReply    = "Error: Cannot reach backend."
	NoAnswerReply = "No response available."
)

// route fixes the endpoint and request encoding of one mode. The two
// backends take different payloads: scheduling wants a JSON question,
// document Q&A wants a form-encoded query.
type route struct {
	url    string
	encode func(question string) (contentType string, body io.Reader)
}

// Dispatcher forwards a question to the mode's backend, single attempt,
// no retry, and extracts the answer field from the JSON response.
type Dispatcher struct {
	client *http.Client
	routes map[chat.Mode]route
	log    *zap.Logger
}

func NewDispatcher(schedulingURL, documentQAURL string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{},
		routes: map[chat.Mode]route{
			chat.ModeScheduling: {url: schedulingURL, encode: encodeJSONQuestion},
			chat.ModeDocumentQA: {url: documentQAURL, encode: encodeFormQuery},
		},
		log: log,
	}
}

func encodeJSONQuestion(question string) (string, io.Reader) {
	body, _ := json.Marshal(map[string]string{"question": question})
	return "application/json", bytes.NewReader(body)
}

func encodeFormQuery(question string) (string, io.Reader) {
	form := url.Values{"query": {question}}
	return "application/x-www-form-urlencoded", strings.NewReader(form.Encode())
}

func (d *Dispatcher) Send(ctx context.Context, question string, mode chat.Mode) string {
	defer logging.LogDuration(ctx, "assistant.Send")()

	rt, ok := d.routes[mode]
	if !ok {
		d.log.Error("no route for mode", zap.String("mode", string(mode)))
		return ErrorReply
	}
	contentType, body := rt.encode(question)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rt.url, body)
	if err != nil {
		d.log.Error("assistant request build failed", zap.Error(err))
		return ErrorReply
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn("assistant unreachable", zap.String("mode", string(mode)), zap.Error(err))
		return ErrorReply
	}
	defer resp.Body.Close()

	var payload struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		d.log.Warn("assistant response decode failed", zap.String("mode", string(mode)), zap.Error(err))
		return ErrorReply
	}
	if payload.Answer == "" {
		return NoAnswerReply
	}
	return payload.Answer
}
