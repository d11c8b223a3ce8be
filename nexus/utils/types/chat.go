package types

import "nexus/nexus/chat"

type SendRequest struct {
	Text string `json:"text"`
}

type SendResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type CreateSessionRequest struct {
	Mode string `json:"mode"`
}

// StateResponse is the sessions panel view: per-mode lists in their
// original order plus the selection pointers.
type StateResponse struct {
	SchedulingSessions []*chat.ChatSession `json:"scheduling_sessions"`
	DocumentQASessions []*chat.ChatSession `json:"document_qa_sessions"`
	CurrentSessionID   string              `json:"current_session_id"`
	ActiveMode         chat.Mode           `json:"active_mode"`
}

type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

// WSSendRequest is the single frame a websocket client sends: its token
// plus the message to dispatch.
type WSSendRequest struct {
	Token string      `json:"token"`
	Send  SendRequest `json:"send_request"`
}
