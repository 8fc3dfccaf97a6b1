package memory

import (
	"strings"
	"sync"
	"time"
)

// Turn is one question/answer exchange in a session.
type Turn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

type sessionState struct {
	lastTopic string
	turns     []Turn
}

// ConversationMemory keeps a per-session ordered log of turns plus the last
// inferred topic, used to contextualize ambiguous follow-up questions.
// Sessions live for the process lifetime; there is no eviction.
type ConversationMemory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{sessions: make(map[string]*sessionState)}
}

func (m *ConversationMemory) get(sessionID string) *sessionState {
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &sessionState{}
		m.sessions[sessionID] = s
	}
	return s
}

// Update appends a turn to the session and remembers the topic if one was
// inferred.
func (m *ConversationMemory) Update(sessionID, question, answer, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.get(sessionID)
	s.turns = append(s.turns, Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	if topic != "" {
		s.lastTopic = topic
	}
}

// History returns a copy of the session's turns in the order they were asked.
func (m *ConversationMemory) History(sessionID string) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

var pronouns = map[string]struct{}{
	"it": {}, "that": {}, "they": {}, "this": {},
	"those": {}, "them": {}, "there": {}, "here": {},
}

// Contextualize appends the session's last topic to short or
// pronoun-bearing questions so retrieval has something to anchor on.
func (m *ConversationMemory) Contextualize(sessionID, question string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.TrimSpace(question)
	tokens := strings.Fields(strings.ToLower(q))

	ambiguous := len(tokens) <= 5
	if !ambiguous {
		for _, t := range tokens {
			if _, ok := pronouns[t]; ok {
				ambiguous = true
				break
			}
		}
	}
	if !ambiguous {
		return q
	}

	s, ok := m.sessions[sessionID]
	if !ok || s.lastTopic == "" {
		return q
	}
	return q + " (context: " + s.lastTopic + ")"
}

var topicKeywords = []string{
	"budget", "debt", "infrastructure", "tax", "revenue",
	"expenditure", "loan", "deficit", "grant", "policy",
}

// InferTopic guesses the question's topic from policy vocabulary, falling
// back to the first few informative words.
func (m *ConversationMemory) InferTopic(question string) string {
	ql := strings.ToLower(question)
	for _, k := range topicKeywords {
		if strings.Contains(ql, k) {
			return k
		}
	}

	var words []string
	for _, w := range strings.Fields(ql) {
		if len(w) > 3 {
			words = append(words, w)
			if len(words) == 3 {
				break
			}
		}
	}
	return strings.Join(words, " ")
}
