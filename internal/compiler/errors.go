package compiler

import (
	"errors"
	"fmt"

	"github.com/aretw0/stater/pkg/route"
)

// ErrAmbiguousRoute is returned when two handlers would always tie.
var ErrAmbiguousRoute = errors.New("ambiguous route")

// ErrNilHandler is returned when the handler list contains a nil descriptor.
var ErrNilHandler = errors.New("nil handler descriptor")

// AmbiguityError names two descriptors that match the same updates with the
// same specificity and no content predicate to tell them apart.
type AmbiguityError struct {
	Path   string
	First  *route.Descriptor
	Second *route.Descriptor
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s at %s: %q (%s) and %q (%s) would always tie",
		ErrAmbiguousRoute, e.Path,
		e.First.Name(), e.First.Origin(),
		e.Second.Name(), e.Second.Origin())
}

func (e *AmbiguityError) Unwrap() error {
	return ErrAmbiguousRoute
}
