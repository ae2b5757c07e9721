package value

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DefaultIDLength is the length of generated identifiers.
const DefaultIDLength = 8

// IDSource hands out fresh identifiers.
type IDSource interface {
	NewID() string
}

const (
	letters  = "abcdefghijklmnopqrstuvwxyz"
	alphanum = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type randomIDs struct {
	length int
}

// NewIDSource returns source producing random ids of given length built from
// UUIDv4 randomness. First character is always a letter so the id can be used
// as a CSS class selector as is.
func NewIDSource(length int) IDSource {
	if length <= 0 {
		length = DefaultIDLength
	}
	return &randomIDs{length: length}
}

func (r *randomIDs) NewID() string {
	buf := make([]byte, 0, r.length)
	for len(buf) < r.length {
		u := uuid.New()
		for _, b := range u {
			if len(buf) == r.length {
				break
			}
			if len(buf) == 0 {
				buf = append(buf, letters[int(b)%len(letters)])
				continue
			}
			buf = append(buf, alphanum[int(b)%len(alphanum)])
		}
	}
	return string(buf)
}

type sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// Sequence returns deterministic source producing prefix1, prefix2, ...
func Sequence(prefix string) IDSource {
	return &sequence{prefix: prefix}
}

func (s *sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next)
}
