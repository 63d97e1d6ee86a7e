// Package names hands out the fresh identifiers introduced by lowering.
package names

import (
	"strconv"
	"strings"

	"github.com/lhaig/anfc/internal/diagnostic"
)

// Supply issues unit-unique names from one monotonically increasing
// counter. It is not safe for concurrent use; each compilation unit owns
// exactly one.
type Supply struct {
	next  int
	taken map[string]bool
}

// NewSupply returns an empty supply.
func NewSupply() *Supply {
	return &Supply{taken: make(map[string]bool)}
}

// Fresh returns base.N for the next counter value. Source identifiers
// cannot contain '.', so fresh names never clash with them. A clash with
// an earlier Fresh or Reserve result panics with a NameCollision
// InternalError.
func (s *Supply) Fresh(base string) string {
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "t"
	}
	s.next++
	name := base + "." + strconv.Itoa(s.next)
	s.claim(name)
	return name
}

// Reserve records a name chosen elsewhere, such as a top-level function
// name. Reserving the same name twice panics with a NameCollision.
func (s *Supply) Reserve(name string) {
	s.claim(name)
}

// Advance moves the counter to at least n, so later Fresh names are
// numbered above n.
func (s *Supply) Advance(n int) {
	if n > s.next {
		s.next = n
	}
}

// Taken reports whether name has been issued or reserved.
func (s *Supply) Taken(name string) bool {
	return s.taken[name]
}

// Counter returns how many fresh names have been issued.
func (s *Supply) Counter() int {
	return s.next
}

func (s *Supply) claim(name string) {
	if s.taken[name] {
		panic(diagnostic.Internalf(diagnostic.NameCollision, "name '%s' issued twice", name))
	}
	s.taken[name] = true
}
