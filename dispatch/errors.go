package dispatch

import "fmt"

// MaxDepthExceeded is returned when a Sequence/Batch/Forward nests deeper
// than the configured composite depth.
type MaxDepthExceeded struct {
	Depth, Max int
}

func (e *MaxDepthExceeded) Error() string {
	return fmt.Sprintf("dispatch: composite depth %d exceeds max %d", e.Depth, e.Max)
}

// UnknownKind is returned when a request envelope names a Kind with no
// registered handler.
type UnknownKind struct {
	Kind string
}

func (e *UnknownKind) Error() string { return fmt.Sprintf("dispatch: unknown request kind %q", e.Kind) }

// Path-rewrite failures. A rule whose target path does not
// match anything in the pending request is NOT an error -- the request is
// left unchanged -- so there is no "target not found" member here.
type (
	// RewriteValueNotFound is returned when a rule's Value path matches
	// nothing in the preceding reply.
	RewriteValueNotFound struct {
		Path string
	}
	// RewriteValueNotScalar is returned when a rule's Value path resolves
	// to an object or array rather than a single scalar.
	RewriteValueNotScalar struct {
		Path string
	}
	// RewriteIncompatible is returned when substituting the extracted
	// value into the request document fails (e.g. the target path walks
	// through a scalar as though it were a container).
	RewriteIncompatible struct {
		Path  string
		Cause error
	}
)

func (e *RewriteValueNotFound) Error() string {
	return fmt.Sprintf("dispatch: path-rewrite value not found at %s", e.Path)
}
func (e *RewriteValueNotScalar) Error() string {
	return fmt.Sprintf("dispatch: path-rewrite value at %s is not a scalar", e.Path)
}
func (e *RewriteIncompatible) Error() string {
	return fmt.Sprintf("dispatch: path-rewrite substitution at %s: %v", e.Path, e.Cause)
}
func (e *RewriteIncompatible) Unwrap() error { return e.Cause }
