package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/sanitize"
)

// Turner runs chat turns against an ordered list of completion endpoints.
type Turner struct {
	client    backend.Client
	endpoints []string
	now       func() time.Time
}

// NewTurner creates a Turner that tries endpoints in the given order.
func NewTurner(client backend.Client, endpoints ...string) *Turner {
	return &Turner{client: client, endpoints: endpoints, now: time.Now}
}

// Endpoints returns the candidate endpoints in try order.
func (t *Turner) Endpoints() []string {
	return append([]string(nil), t.endpoints...)
}

// Turn sends text on behalf of the user and appends the reply. Blank text
// is a no-op and returns nil. Exactly one bot message is appended per
// accepted turn, and Typing is cleared on every path.
func (t *Turner) Turn(ctx context.Context, tr *Transcript, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if r := []rune(text); len(r) > maxMessageRunes {
		text = string(r[:maxMessageRunes])
	}

	if err := tr.begin(Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: t.now(),
	}); err != nil {
		return nil, err
	}

	reply := Message{ID: uuid.NewString(), Sender: SenderBot, Text: Apology}
	defer func() {
		reply.Timestamp = t.now()
		tr.finish(reply)
	}()

	if answer := t.ask(ctx, text); answer != "" {
		reply.Text = answer
	}
	return &reply, nil
}

// ask tries each endpoint in order and returns the first non-empty reply,
// or "" when all of them fail.
func (t *Turner) ask(ctx context.Context, text string) string {
	for _, endpoint := range t.endpoints {
		answer, err := t.attempt(ctx, endpoint, text)
		if err != nil {
			slog.Warn("chat endpoint failed",
				slog.String("endpoint", endpoint),
				slog.Any("error", err),
			)
			continue
		}
		if answer != "" {
			return answer
		}
		slog.Debug("chat endpoint returned an empty reply", slog.String("endpoint", endpoint))
	}
	return ""
}

// attempt posts to one endpoint and extracts the reply text.
func (t *Turner) attempt(ctx context.Context, endpoint, text string) (string, error) {
	body, err := t.client.PostChat(ctx, endpoint, text)
	if err != nil {
		return "", fmt.Errorf("posting to %s: %w", endpoint, err)
	}
	return sanitize.Text(ParseReply(body)), nil
}

// ParseReply extracts the reply text from a completion response body.
// JSON objects are searched for choices[0].message.content, then reply,
// message and response; bodies that are not JSON are the reply themselves.
// Any other JSON value yields "".
func ParseReply(body string) string {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil || data == nil {
		return body
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}

	if content := choiceContent(obj); content != "" {
		return content
	}
	for _, key := range []string{"reply", "message", "response"} {
		if v, present := obj[key]; present && v != nil {
			return stringify(v)
		}
	}
	return ""
}

// choiceContent reads choices[0].message.content from an OpenAI-style body.
func choiceContent(obj map[string]any) string {
	choices, _ := obj["choices"].([]any)
	if len(choices) == 0 {
		return ""
	}
	first, _ := choices[0].(map[string]any)
	msg, _ := first["message"].(map[string]any)
	content, present := msg["content"]
	if !present || content == nil {
		return ""
	}
	return stringify(content)
}

// stringify renders a decoded JSON value as text.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64, bool:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
