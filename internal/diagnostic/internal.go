package diagnostic

import (
	"fmt"

	"github.com/pkg/errors"
)

// InternalKind classifies a broken contract between compiler stages.
type InternalKind int

const (
	UnknownConstructor InternalKind = iota
	ArityMismatch
	DuplicateTag
	NameCollision
	UnboundName
	Malformed
)

func (k InternalKind) String() string {
	switch k {
	case UnknownConstructor:
		return "unknown constructor"
	case ArityMismatch:
		return "arity mismatch"
	case DuplicateTag:
		return "duplicate tag"
	case NameCollision:
		return "name collision"
	case UnboundName:
		return "unbound name"
	case Malformed:
		return "malformed tree"
	default:
		return "internal"
	}
}

// InternalError reports a tree that the lowering cannot accept. It means an
// earlier stage let an invalid program through; it is never a user error.
type InternalError struct {
	Kind InternalKind
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error (%s): %s", e.Kind, e.Msg)
}

// Internalf builds an InternalError with a stack trace attached.
func Internalf(kind InternalKind, format string, args ...interface{}) error {
	return errors.WithStack(&InternalError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// AsInternal unwraps err to an InternalError if it carries one.
func AsInternal(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
