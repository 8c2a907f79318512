package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
)

// fakeModel implements model.BaseChatModel.
type fakeModel struct {
	generateFn func(ctx context.Context, input []*schema.Message) (*schema.Message, error)
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return f.generateFn(ctx, input)
}

func (f *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func newTestHandler(client *mockBackend, completer Completer) (*Handler, *TranscriptStore) {
	store := NewTranscriptStore(time.Hour)
	return NewHandler(store, newTestTurner(client), completer), store
}

func TestSend_HTMXReturnsConversation(t *testing.T) {
	client := &mockBackend{postChatFn: byEndpoint(map[string]string{primaryURL: `{"reply":"breathe <slowly>"}`}, nil)}
	h, store := newTestHandler(client, nil)
	tr := store.Create()

	form := url.Values{"transcript_id": {tr.ID}, "message": {"I feel stressed"}}
	req := httptest.NewRequest(http.MethodPost, "/chatbot/messages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	if err := h.Send(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<section id="chat"`) {
		t.Error("HTMX response should be the conversation fragment")
	}
	for _, want := range []string{"I feel stressed", "breathe", tr.ID} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if len(tr.Snapshot().Messages) != 3 {
		t.Error("turn should run against the posted transcript")
	}
}

func TestSend_UnknownTranscriptStartsNew(t *testing.T) {
	client := &mockBackend{postChatFn: byEndpoint(map[string]string{primaryURL: "hello"}, nil)}
	h, store := newTestHandler(client, nil)

	form := url.Values{"transcript_id": {"gone"}, "message": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/chatbot/messages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	if err := h.Send(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected a new transcript, got %d", store.Len())
	}
	if !strings.Contains(rec.Body.String(), templ.EscapeString(Greeting)) {
		t.Error("new transcript should include the greeting")
	}
}

func TestRelay_NotConfigured(t *testing.T) {
	h, _ := newTestHandler(&mockBackend{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	err := h.Relay(echo.New().NewContext(req, httptest.NewRecorder()))
	if apperror.SafeCode(err) != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestRelay_RepliesFromModel(t *testing.T) {
	var got []*schema.Message
	completer := NewModelCompleter(&fakeModel{generateFn: func(_ context.Context, input []*schema.Message) (*schema.Message, error) {
		got = input
		return schema.AssistantMessage("  You are not alone.  ", nil), nil
	}})
	h, _ := newTestHandler(&mockBackend{}, completer)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"I feel sad"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := h.Relay(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ParseReply(rec.Body.String()) != "You are not alone." {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if len(got) != 2 || got[0].Role != schema.System || got[1].Content != "I feel sad" {
		t.Errorf("unexpected model input %+v", got)
	}
}

func TestRelay_ModelErrorIsBadGateway(t *testing.T) {
	completer := NewModelCompleter(&fakeModel{generateFn: func(context.Context, []*schema.Message) (*schema.Message, error) {
		return nil, errors.New("quota exceeded")
	}})
	h, _ := newTestHandler(&mockBackend{}, completer)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	err := h.Relay(echo.New().NewContext(req, httptest.NewRecorder()))
	if apperror.SafeCode(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestRelay_BlankMessage(t *testing.T) {
	h, _ := newTestHandler(&mockBackend{}, NewModelCompleter(&fakeModel{}))
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	err := h.Relay(echo.New().NewContext(req, httptest.NewRecorder()))
	if apperror.SafeCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
