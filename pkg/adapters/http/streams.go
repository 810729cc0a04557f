package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/stater/pkg/domain"
)

// StreamManager fans dispatch events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan<- string]struct{} // ChatID -> Set of Channels; 0 receives everything
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[int64]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for one chat, or for all chats when chatID is 0.
func (sm *StreamManager) Subscribe(chatID int64) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[chatID]; !ok {
		sm.subscribers[chatID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[chatID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[chatID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, chatID)
			}
		}
	}
}

// Broadcast sends msg to the chat's subscribers and to the catch-all ones.
func (sm *StreamManager) Broadcast(chatID int64, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.send(sm.subscribers[chatID], chatID, msg)
	if chatID != 0 {
		sm.send(sm.subscribers[0], chatID, msg)
	}
}

func (sm *StreamManager) send(subs map[chan<- string]struct{}, chatID int64, msg string) {
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping event", "chat_id", chatID)
		}
	}
}

// Hooks publishes every dispatch as a JSON event.
func (sm *StreamManager) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(_ context.Context, ev *domain.DispatchEvent) {
			payload := struct {
				*domain.DispatchEvent
				Error string `json:"error,omitempty"`
			}{DispatchEvent: ev}
			if ev.Err != nil {
				payload.Error = ev.Err.Error()
			}
			b, err := json.Marshal(payload)
			if err != nil {
				sm.logger.Error("SSE: event encode failed", "err", err)
				return
			}
			sm.Broadcast(ev.Key.ChatID, string(b))
		},
	}
}
