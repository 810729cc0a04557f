package manifest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/pkg/adapters/memory"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/aretw0/stater/pkg/route"
	"github.com/spf13/cast"
)

// Case is a routing fixture: an update, the state it arrives in and what must happen.
type Case struct {
	Name   string         `json:"name,omitempty" mapstructure:"name"`
	State  string         `json:"state,omitempty" mapstructure:"state"`
	Update map[string]any `json:"update" mapstructure:"update"`
	// Expect is the handler name, or "default" for the default handler.
	Expect      string `json:"expect" mapstructure:"expect"`
	ExpectState string `json:"expect_state,omitempty" mapstructure:"expect_state"`
	ExpectReply string `json:"expect_reply,omitempty" mapstructure:"expect_reply"`
}

// Label names the case in reports.
func (c Case) Label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("case %d", i+1)
}

// CaseResult is the outcome of one fixture.
type CaseResult struct {
	Case    Case           `json:"case"`
	Handler string         `json:"handler"`
	State   domain.StateID `json:"state"`
	Replies []string       `json:"replies,omitempty"`
	Err     error          `json:"-"`
	// Failures lists each unmet expectation. Empty means the case passed.
	Failures []string `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r CaseResult) Passed() bool { return len(r.Failures) == 0 }

// Router compiles the manifest into a router whose replies go to reply.
func (m *Manifest) Router(reply Replier, opts ...stater.Option) (*stater.Router, error) {
	handlers, err := m.Handlers(reply)
	if err != nil {
		return nil, err
	}
	if def := m.DefaultAction(reply); def != nil {
		opts = append([]stater.Option{stater.WithDefault(def)}, opts...)
	}
	return stater.New(handlers, opts...)
}

// RunCases compiles the manifest and runs every case against a fresh in-memory store.
func (m *Manifest) RunCases(ctx context.Context, opts ...stater.Option) ([]CaseResult, error) {
	return m.RunCasesWith(ctx, func() ports.StateStore { return memory.NewStore() }, opts...)
}

// RunCasesWith runs every case against a store from newStore, one store per case.
// A store that cannot be seeded with the case's state fails that case.
func (m *Manifest) RunCasesWith(ctx context.Context, newStore func() ports.StateStore, opts ...stater.Option) ([]CaseResult, error) {
	var (
		mu      sync.Mutex
		replies []string
	)
	record := func(_ context.Context, _ route.Context, text string) error {
		mu.Lock()
		defer mu.Unlock()
		replies = append(replies, text)
		return nil
	}

	r, err := m.Router(record, opts...)
	if err != nil {
		return nil, err
	}

	results := make([]CaseResult, 0, len(m.Cases))
	for i, c := range m.Cases {
		replies = nil
		res := CaseResult{Case: c}

		u, err := c.ToUpdate(i + 1)
		if err != nil {
			res.Failures = append(res.Failures, err.Error())
			results = append(results, res)
			continue
		}

		store := newStore()
		if c.State != "" && c.State != DefaultStateToken && u.Validate() == nil {
			if err := store.Set(ctx, u.Key(), domain.StateID(c.State)); err != nil {
				res.Err = err
				res.Failures = append(res.Failures, fmt.Sprintf("seed state %s: %v", c.State, err))
				results = append(results, res)
				continue
			}
		}

		out, err := r.Dispatch(ctx, &u, store)
		res.Handler = out.Handler
		res.Err = err
		res.Replies = append([]string(nil), replies...)
		if u.Validate() == nil {
			var getErr error
			if res.State, getErr = store.Get(ctx, u.Key()); getErr != nil {
				res.Failures = append(res.Failures, fmt.Sprintf("read state: %v", getErr))
			}
		}

		if c.Expect != "" && c.Expect != out.Handler {
			res.Failures = append(res.Failures, fmt.Sprintf("expected handler %q, got %q", c.Expect, out.Handler))
		}
		if c.ExpectState != "" {
			want := domain.StateID(c.ExpectState)
			if c.ExpectState == DefaultStateToken {
				want = domain.DefaultState
			}
			if want != res.State {
				res.Failures = append(res.Failures, fmt.Sprintf("expected state %s, got %s", want, res.State))
			}
		}
		if c.ExpectReply != "" && !contains(res.Replies, c.ExpectReply) {
			res.Failures = append(res.Failures, fmt.Sprintf("expected reply %q, got %q", c.ExpectReply, res.Replies))
		}
		if err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("dispatch error: %v", err))
		}
		results = append(results, res)
	}
	return results, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ToUpdate builds the case's update. Kind defaults to message, chat and user to 1,
// and a leading command is parsed out of text. id is used when the case sets none.
func (c Case) ToUpdate(id int) (domain.Update, error) {
	u := domain.Update{ID: id, Kind: domain.KindMessage, ChatID: 1, UserID: 1}

	keys := make([]string, 0, len(c.Update))
	for k := range c.Update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := c.Update[k]
		var err error
		switch k {
		case "id":
			u.ID, err = cast.ToIntE(v)
		case "kind":
			var s string
			s, err = cast.ToStringE(v)
			u.Kind = domain.UpdateKind(s)
		case "chat":
			u.ChatID, err = cast.ToInt64E(v)
		case "user":
			u.UserID, err = cast.ToInt64E(v)
		case "thread":
			u.ThreadID, err = cast.ToInt64E(v)
		case "text":
			u.Text, err = cast.ToStringE(v)
		case "data":
			u.CallbackData, err = cast.ToStringE(v)
		case "query":
			u.Query, err = cast.ToStringE(v)
		case "reply_to":
			u.ReplyTo, err = cast.ToIntE(v)
		case "attachments":
			var kinds []string
			kinds, err = cast.ToStringSliceE(v)
			for _, a := range kinds {
				u.Attachments = append(u.Attachments, domain.AttachmentKind(a))
			}
		case "metadata":
			u.Metadata, err = cast.ToStringMapStringE(v)
		default:
			err = fmt.Errorf("unknown field (known: %s)", strings.Join(updateFields, ", "))
		}
		if err != nil {
			return domain.Update{}, fmt.Errorf("update.%s: %w", k, err)
		}
	}

	if u.Kind.CarriesCommands() {
		u.Command, u.Args, _ = domain.ParseCommand(u.Text)
	}
	return u, nil
}

var updateFields = []string{
	"id", "kind", "chat", "user", "thread", "text", "data",
	"query", "reply_to", "attachments", "metadata",
}
