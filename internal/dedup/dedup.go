package dedup

import (
	"context"
	"sort"
)

// SeenSet holds every link already reported. Links are never removed.
type SeenSet map[string]struct{}

func NewSeenSet(links ...string) SeenSet {
	s := make(SeenSet, len(links))
	for _, l := range links {
		s.Add(l)
	}
	return s
}

// IsSeen checks if a link has already been reported
func (s SeenSet) IsSeen(link string) bool {
	_, ok := s[link]
	return ok
}

func (s SeenSet) Add(link string) {
	s[link] = struct{}{}
}

func (s SeenSet) Len() int {
	return len(s)
}

// Sorted returns the links in lexical order, for stable output.
func (s SeenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Store persists a SeenSet between runs.
// Load never fails: a missing or unreadable backing store is an empty set.
type Store interface {
	Load(ctx context.Context) SeenSet
	Save(ctx context.Context, seen SeenSet) error
}
