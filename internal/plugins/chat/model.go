// Package chat is the NeroCare conversation page. A page view owns an
// in-memory transcript; each turn posts the user's text to an ordered list
// of completion endpoints and appends exactly one bot reply. Transcripts are
// never persisted.
//
// The package also serves this site's own /api/chat endpoint, a relay to a
// hosted chat model that acts as the last candidate endpoint.
package chat

import (
	"errors"
	"time"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Greeting seeds every new transcript.
const Greeting = "👋 Hello! I'm NeroCare, your AI mental health companion. How are you feeling today?"

// Apology is the bot reply when no endpoint produced an answer.
const Apology = "Sorry, I couldn't get a response from NeroCare."

// QuickSuggestions are one-click prompts shown under the input.
var QuickSuggestions = []string{
	"I feel sad",
	"I feel stressed",
	"I'm feeling anxious",
	"I need motivation",
	"I'm having trouble sleeping",
	"I feel overwhelmed",
}

// maxMessageRunes caps what one turn will send.
const maxMessageRunes = 2000

// ErrBusy is returned when a turn is submitted while the previous one on
// the same transcript is still waiting for a reply.
var ErrBusy = errors.New("chat: a reply is still pending")

// Message is one line of the conversation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// --- Request DTOs ---

// SendRequest is the chat form submission.
type SendRequest struct {
	TranscriptID string `form:"transcript_id"`
	Message      string `form:"message"`
}

// RelayRequest is the body of POST /api/chat.
type RelayRequest struct {
	Message string `json:"message"`
}

// RelayResponse is the success body of POST /api/chat.
type RelayResponse struct {
	Reply string `json:"reply"`
}
