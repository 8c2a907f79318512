package chat

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcript is the conversation of one chat page view. Typing doubles as
// the busy flag: while it is set, new turns are rejected.
type Transcript struct {
	ID string

	mu       sync.Mutex
	messages []Message
	typing   bool
	lastUsed time.Time
}

// Snapshot is a consistent copy of a transcript for rendering.
type Snapshot struct {
	ID       string
	Messages []Message
	Typing   bool
}

// Snapshot copies the transcript's current state.
func (t *Transcript) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{ID: t.ID, Messages: slices.Clone(t.messages), Typing: t.typing}
}

// begin appends the user's message and sets Typing, unless a turn is
// already in flight.
func (t *Transcript) begin(msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typing {
		return ErrBusy
	}
	t.messages = append(t.messages, msg)
	t.typing = true
	t.lastUsed = msg.Timestamp
	return nil
}

// finish appends the bot's reply and clears Typing.
func (t *Transcript) finish(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	t.typing = false
	t.lastUsed = msg.Timestamp
}

// activity returns when t was last touched and whether a turn is in flight.
func (t *Transcript) activity() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUsed, t.typing
}

// TranscriptStore holds live transcripts in memory, keyed by ID. A
// transcript untouched for longer than the idle TTL is dropped.
type TranscriptStore struct {
	mu          sync.Mutex
	transcripts map[string]*Transcript
	idleTTL     time.Duration
	now         func() time.Time
}

// NewTranscriptStore creates an empty store.
func NewTranscriptStore(idleTTL time.Duration) *TranscriptStore {
	return &TranscriptStore{
		transcripts: make(map[string]*Transcript),
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// Create starts a transcript seeded with the greeting.
func (s *TranscriptStore) Create() *Transcript {
	now := s.now()
	t := &Transcript{
		ID:       uuid.NewString(),
		lastUsed: now,
		messages: []Message{{
			ID:        uuid.NewString(),
			Text:      Greeting,
			Sender:    SenderBot,
			Timestamp: now,
		}},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.transcripts[t.ID] = t
	return t
}

// Get returns a live transcript by ID.
func (s *TranscriptStore) Get(id string) (*Transcript, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transcripts[id]
	if !ok {
		return nil, false
	}
	if s.expired(t, s.now()) {
		delete(s.transcripts, id)
		return nil, false
	}
	return t, true
}

// Len returns the number of stored transcripts, expired or not.
func (s *TranscriptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcripts)
}

// sweepLocked drops idle transcripts. Caller holds mu.
func (s *TranscriptStore) sweepLocked(now time.Time) {
	for id, t := range s.transcripts {
		if s.expired(t, now) {
			delete(s.transcripts, id)
		}
	}
}

// expired reports whether t has been idle past the TTL. A transcript with
// a turn in flight never expires.
func (s *TranscriptStore) expired(t *Transcript, now time.Time) bool {
	if s.idleTTL <= 0 {
		return false
	}
	lastUsed, typing := t.activity()
	return !typing && now.Sub(lastUsed) > s.idleTTL
}
