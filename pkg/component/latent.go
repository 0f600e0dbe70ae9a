package component

import "slices"

// LatentSet holds components that were detached during a reconciliation pass
// but must not be destroyed yet, because the same pass may attach them
// somewhere else.
type LatentSet struct {
	members map[ID]Component
}

// NewLatentSet creates an empty set.
func NewLatentSet() *LatentSet {
	return &LatentSet{members: make(map[ID]Component)}
}

// Add marks c as latent.
func (s *LatentSet) Add(c Component) {
	s.members[c.ID()] = c
}

// Remove takes id out of the set, reporting whether it was present.
func (s *LatentSet) Remove(id ID) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	return true
}

// Has reports whether id is latent.
func (s *LatentSet) Has(id ID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of latent components.
func (s *LatentSet) Len() int { return len(s.members) }

// IDs returns the latent identifiers in ascending order.
func (s *LatentSet) IDs() []ID {
	ids := make([]ID, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
