package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/stater/pkg/domain"
)

// DecodeUpdates reads one update per line from r and sends it on out.
// A line holding a JSON object is decoded as a domain.Update; any other
// non-empty line becomes a text message in chat 1, which keeps hand-typed
// sessions short. It returns at EOF, on a malformed JSON object, or when ctx is done.
func DecodeUpdates(ctx context.Context, r io.Reader, out chan<- domain.Update) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var u domain.Update
		if strings.HasPrefix(text, "{") {
			if err := json.Unmarshal([]byte(text), &u); err != nil {
				return fmt.Errorf("line %d: failed to decode update: %w", line, err)
			}
			u.NormalizeCommand()
		} else {
			u = domain.NewMessage(1, 1, text)
		}
		if u.ID == 0 {
			u.ID = line
		}

		select {
		case out <- u:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// resultLine is the JSON form of a Result.
type resultLine struct {
	UpdateID int            `json:"update_id"`
	Key      string         `json:"key"`
	Handler  string         `json:"handler"`
	Fallback bool           `json:"fallback"`
	State    domain.StateID `json:"state"`
	Error    string         `json:"error,omitempty"`
}

// ResultEncoder writes results as JSON lines. Safe for concurrent use.
type ResultEncoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewResultEncoder creates an encoder writing to w.
func NewResultEncoder(w io.Writer) *ResultEncoder {
	return &ResultEncoder{enc: json.NewEncoder(w)}
}

// Encode writes one result line.
func (e *ResultEncoder) Encode(r Result) error {
	line := resultLine{
		UpdateID: r.Update.ID,
		Key:      r.Update.Key().String(),
		Handler:  r.Outcome.Handler,
		Fallback: r.Outcome.Fallback,
		State:    r.Outcome.State,
	}
	if r.Err != nil {
		line.Error = r.Err.Error()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(line)
}
