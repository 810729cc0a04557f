package route

import (
	"regexp"
	"strings"

	"github.com/aretw0/stater/pkg/domain"
)

// TextEquals matches updates whose text equals s, ignoring case and surrounding space.
func TextEquals(s string) *Predicate {
	return NewPredicate("text=="+s, func(u *domain.Update) bool {
		return strings.EqualFold(strings.TrimSpace(u.Text), s)
	})
}

// TextPrefix matches updates whose text starts with prefix.
func TextPrefix(prefix string) *Predicate {
	return NewPredicate("text^="+prefix, func(u *domain.Update) bool {
		return strings.HasPrefix(u.Text, prefix)
	})
}

// TextMatches matches updates whose text matches the regular expression expr.
// It panics if expr does not compile, like regexp.MustCompile.
func TextMatches(expr string) *Predicate {
	re := regexp.MustCompile(expr)
	return NewPredicate("text~"+expr, func(u *domain.Update) bool {
		return re.MatchString(u.Text)
	})
}

// HasText matches updates with non-blank text.
func HasText() *Predicate {
	return NewPredicate("text", func(u *domain.Update) bool {
		return strings.TrimSpace(u.Text) != ""
	})
}

// NotCommand matches messages that carry no bot command.
func NotCommand() *Predicate {
	return NewPredicate("!command", func(u *domain.Update) bool {
		return u.Command == ""
	})
}

// CallbackPrefix matches callback queries whose data starts with prefix.
func CallbackPrefix(prefix string) *Predicate {
	return NewPredicate("data^="+prefix, func(u *domain.Update) bool {
		return strings.HasPrefix(u.CallbackData, prefix)
	})
}

// HasAttachment matches messages carrying the attachment kind.
func HasAttachment(kind domain.AttachmentKind) *Predicate {
	return NewPredicate("has:"+string(kind), func(u *domain.Update) bool {
		return u.HasAttachment(kind)
	})
}

// IsReply matches messages replying to another message.
func IsReply() *Predicate {
	return NewPredicate("reply", func(u *domain.Update) bool {
		return u.ReplyTo != 0
	})
}

// And matches when all predicates match.
func And(ps ...*Predicate) *Predicate {
	return NewPredicate(joinNames("&", ps), func(u *domain.Update) bool {
		for _, p := range ps {
			if !p.Match(u) {
				return false
			}
		}
		return true
	})
}

// Or matches when any predicate matches.
func Or(ps ...*Predicate) *Predicate {
	return NewPredicate(joinNames("|", ps), func(u *domain.Update) bool {
		for _, p := range ps {
			if p.Match(u) {
				return true
			}
		}
		return false
	})
}

// Not inverts p. Not(nil) never matches.
func Not(p *Predicate) *Predicate {
	return NewPredicate("!("+p.String()+")", func(u *domain.Update) bool {
		return !p.Match(u)
	})
}

func joinNames(sep string, ps []*Predicate) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return "(" + strings.Join(names, sep) + ")"
}
