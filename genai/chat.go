package genai

import "context"

// Chat is a conversation with a model. History holds the turns exchanged so
// far and is sent with every message. A Chat is not safe for concurrent use.
type Chat struct {
	model   *GenerativeModel
	History []Content
}

// StartChat begins a conversation, optionally seeded with history.
func (m *GenerativeModel) StartChat(history ...Content) *Chat {
	return &Chat{model: m, History: append([]Content(nil), history...)}
}

// SendMessage sends a user turn made of parts. The turn and the reply are
// added to History only when the call succeeds.
func (c *Chat) SendMessage(ctx context.Context, parts ...Part) (*GenerateContentResponse, error) {
	userTurn := NewUserContent(parts...)
	response, err := c.model.GenerateContentFrom(ctx, c.withTurn(userTurn)...)
	if err != nil {
		return nil, err
	}

	c.appendTurns(userTurn, response)
	return response, nil
}

// SendMessageStream streams the reply to a user turn. The turn and the merged
// reply are added to History once the stream completes.
func (c *Chat) SendMessageStream(ctx context.Context, parts ...Part) *GenerateContentStream {
	userTurn := NewUserContent(parts...)
	stream := c.model.GenerateContentStreamFrom(ctx, c.withTurn(userTurn)...)
	stream.onComplete = func(merged *GenerateContentResponse) {
		c.appendTurns(userTurn, merged)
	}
	return stream
}

func (c *Chat) withTurn(turn Content) []Content {
	contents := make([]Content, 0, len(c.History)+1)
	contents = append(contents, c.History...)
	return append(contents, turn)
}

func (c *Chat) appendTurns(userTurn Content, response *GenerateContentResponse) {
	c.History = append(c.History, userTurn)
	if len(response.Candidates) == 0 {
		return
	}
	reply := response.Candidates[0].Content
	if reply.Role == "" {
		reply.Role = RoleModel
	}
	c.History = append(c.History, reply)
}
