package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nexus/nexus/chat"
	"nexus/nexus/config"
	"nexus/nexus/controllers"
	"nexus/nexus/middlewares"
	"nexus/nexus/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// GET /chat/greeting : dashboard welcome line
		gr.Get("/greeting", func(w http.ResponseWriter, r *http.Request) {
			id := middlewares.IdentityFromContext(r.Context())
			writeJSON(w, types.GreetingResponse{
				Greeting: chat.Greeting(time.Now(), id.DisplayName),
			})
		})

		// GET /chat/state : session lists per mode + selection pointers
		gr.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, ctrl.State())
		})

		// GET /chat/current : the selected session
		gr.Get("/current", func(w http.ResponseWriter, r *http.Request) {
			cur := ctrl.CurrentSession()
			if cur == nil {
				http.Error(w, "no current session", http.StatusNotFound)
				return
			}
			writeJSON(w, cur)
		})

		// POST /chat/send : send a message in the current session
		gr.Post("/send", func(w http.ResponseWriter, r *http.Request) {
			var req types.SendRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			resp, err := ctrl.Send(r.Context(), req.Text)
			if errors.Is(err, chat.ErrEmptyInput) || errors.Is(err, chat.ErrNoSession) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, resp)
		})

		// POST /chat/sessions : start a new thread in a mode
		gr.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
			var req types.CreateSessionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s, err := ctrl.CreateSession(r.Context(), req.Mode)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(s)
		})

		// POST /chat/sessions/{session_id}/select : switch threads.
		// Unknown ids are a silent no-op.
		gr.Post("/sessions/{session_id}/select", func(w http.ResponseWriter, r *http.Request) {
			_ = ctrl.SelectSession(r.Context(), chi.URLParam(r, "session_id"))
			w.WriteHeader(http.StatusNoContent)
		})

		// DELETE /chat/sessions/{session_id}
		gr.Delete("/sessions/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			_ = ctrl.DeleteSession(r.Context(), chi.URLParam(r, "session_id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})

	// One-shot websocket send: a single frame in, the settled reply out.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var input types.WSSendRequest
		if err := json.Unmarshal(data, &input); err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
			return
		}
		if _, err := middlewares.ParseIdentity(cfg, input.Token); err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}

		resp, err := ctrl.Send(ctx, input.Send.Text)
		if errors.Is(err, chat.ErrEmptyInput) || errors.Is(err, chat.ErrNoSession) {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"nothing to send"}`))
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		if err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"send failed"}`))
			conn.Close(websocket.StatusInternalError, "send failed")
			return
		}
		payload, _ := json.Marshal(resp)
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
