package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"nexus/nexus/chat"
	"nexus/nexus/config"
	"nexus/nexus/controllers"
	"nexus/nexus/services/assistant"
	"nexus/nexus/sources/store"
	"nexus/nexus/utils/types"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"name":    "Dana Reyes",
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// newTestServer wires the full stack: file store in a temp dir, real
// dispatcher pointed at a stub assistant backend, chi router with auth.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": "stub answer"})
	}))
	t.Cleanup(backend.Close)

	cfg := config.Config{JWTSecret: testSecret}
	snapStore := store.NewFileStore(filepath.Join(t.TempDir(), "chat.json"), zap.NewNop())
	dispatcher := assistant.NewDispatcher(backend.URL, backend.URL, zap.NewNop())
	manager := chat.NewManager(snapStore, dispatcher, chat.DefaultPresets(), zap.NewNop())
	manager.Bootstrap(context.Background())

	srv := httptest.NewServer(ChatRoutes(controllers.NewChatController(manager), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestChatRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/state", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestStateShowsSeededSessions(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/state", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var state types.StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if len(state.SchedulingSessions) != 1 || len(state.DocumentQASessions) != 1 {
		t.Fatalf("expected one seeded session per mode, got %d/%d",
			len(state.SchedulingSessions), len(state.DocumentQASessions))
	}
	if state.ActiveMode != chat.ModeScheduling {
		t.Errorf("active mode = %q", state.ActiveMode)
	}
	if state.CurrentSessionID != state.SchedulingSessions[0].ID {
		t.Errorf("current id should point at the scheduling seed")
	}
}

func TestSendReturnsReplyAndMutatesSession(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/send", token, types.SendRequest{Text: "is CT free tomorrow"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var sent types.SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		t.Fatal(err)
	}
	if sent.Reply != "stub answer" {
		t.Errorf("reply = %q", sent.Reply)
	}

	cur := doJSON(t, http.MethodGet, srv.URL+"/current", token, nil)
	defer cur.Body.Close()
	var session chat.ChatSession
	if err := json.NewDecoder(cur.Body).Decode(&session); err != nil {
		t.Fatal(err)
	}
	if session.ID != sent.SessionID {
		t.Errorf("reply session %q != current %q", sent.SessionID, session.ID)
	}
	if len(session.Messages) != 3 || session.Messages[2].Text != "stub answer" {
		t.Errorf("session not settled: %+v", session.Messages)
	}
	if session.Title != "Is CT free tomorrow" {
		t.Errorf("title = %q", session.Title)
	}
}

func TestSendEmptyTextIsNoContent(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/send", token, types.SendRequest{Text: "   "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 for empty text, got %d", resp.StatusCode)
	}
}

func TestCreateSelectDeleteSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	created := doJSON(t, http.MethodPost, srv.URL+"/sessions", token,
		types.CreateSessionRequest{Mode: string(chat.ModeDocumentQA)})
	defer created.Body.Close()
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", created.StatusCode)
	}
	var session chat.ChatSession
	if err := json.NewDecoder(created.Body).Decode(&session); err != nil {
		t.Fatal(err)
	}
	if session.Mode != chat.ModeDocumentQA || session.Title != "New Document Q&A Chat" {
		t.Errorf("created session wrong: %+v", session)
	}

	del := doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+session.ID, token, nil)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", del.StatusCode)
	}

	// Unknown select stays a silent no-op.
	sel := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+session.ID+"/select", token, nil)
	sel.Body.Close()
	if sel.StatusCode != http.StatusNoContent {
		t.Errorf("select of deleted session should still 204, got %d", sel.StatusCode)
	}

	state := doJSON(t, http.MethodGet, srv.URL+"/state", token, nil)
	defer state.Body.Close()
	var got types.StateResponse
	if err := json.NewDecoder(state.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.DocumentQASessions) != 1 {
		t.Errorf("expected only the seeded document-qa session, got %d", len(got.DocumentQASessions))
	}
}

func TestCreateSessionUnknownModeRejected(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions", token,
		types.CreateSessionRequest{Mode: "triage"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
}

func TestGreetingUsesIdentity(t *testing.T) {
	srv := newTestServer(t)
	token := signToken(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/greeting", token, nil)
	defer resp.Body.Close()
	var got types.GreetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Greeting, "Dana Reyes") {
		t.Errorf("greeting should carry the display name, got %q", got.Greeting)
	}
}
