// Package interaction holds the operator's transient UI state: the set of
// selected tasks and the single active context menu.
package interaction

import (
	"sort"
	"sync"
)

// Selection is the set of selected task identifiers. The schedule tree
// removes ids from it whenever a task leaves the tree.
type Selection struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Add selects the given tasks without checking them. The board selects
// through schedule.Tree, which refuses ids it does not hold.
func (s *Selection) Add(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()
}

// Remove deselects the given tasks. Unknown ids are ignored.
func (s *Selection) Remove(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.ids, id)
	}
	s.mu.Unlock()
}

// Toggle flips membership of id and returns whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
}

func (s *Selection) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Retain drops every id for which keep returns false.
func (s *Selection) Retain(keep func(id string) bool) {
	s.mu.Lock()
	for id := range s.ids {
		if !keep(id) {
			delete(s.ids, id)
		}
	}
	s.mu.Unlock()
}

// IDs returns the selected ids sorted.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
