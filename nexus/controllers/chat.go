package controllers

import (
	"context"

	"nexus/nexus/chat"
	"nexus/nexus/utils/types"
)

// ChatController adapts the chat manager to the HTTP surface. The
// manager's no-op sentinels (empty input, unknown ids) pass through so
// routes can translate them into silent no-op responses.
type ChatController struct {
	manager *chat.Manager
}

func NewChatController(manager *chat.Manager) *ChatController {
	return &ChatController{manager: manager}
}

// Send applies the optimistic update and waits for the exchange to
// settle, returning the reply the way the portal UI awaits it.
func (c *ChatController) Send(ctx context.Context, text string) (*types.SendResponse, error) {
	ex, err := c.manager.Send(ctx, text)
	if err != nil {
		return nil, err
	}
	reply, err := ex.Reply(ctx)
	if err != nil {
		return nil, err
	}
	return &types.SendResponse{SessionID: ex.SessionID, Reply: reply}, nil
}

func (c *ChatController) State() *types.StateResponse {
	snap := c.manager.State()
	resp := &types.StateResponse{
		CurrentSessionID: snap.CurrentSessionID,
		ActiveMode:       snap.ActiveMode,
	}
	for _, s := range snap.Sessions {
		switch s.Mode {
		case chat.ModeDocumentQA:
			resp.DocumentQASessions = append(resp.DocumentQASessions, s)
		default:
			resp.SchedulingSessions = append(resp.SchedulingSessions, s)
		}
	}
	return resp
}

func (c *ChatController) CurrentSession() *chat.ChatSession {
	return c.manager.Current()
}

func (c *ChatController) CreateSession(ctx context.Context, modeStr string) (*chat.ChatSession, error) {
	mode, ok := chat.ParseMode(modeStr)
	if !ok {
		return nil, chat.ErrUnknownMode
	}
	return c.manager.CreateSession(ctx, mode)
}

func (c *ChatController) SelectSession(ctx context.Context, id string) error {
	return c.manager.SelectSession(ctx, id)
}

func (c *ChatController) DeleteSession(ctx context.Context, id string) error {
	return c.manager.DeleteSession(ctx, id)
}
