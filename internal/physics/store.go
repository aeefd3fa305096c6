package physics

// bodyStore owns every live body. Bodies are kept in per-type slices so
// the step pipeline iterates dynamics without filtering, plus an id map
// for lookups and a renderable index for raycast cross-referencing.
type bodyStore struct {
	byID         map[uint64]*Body
	byRenderable map[uint64]*Body
	dynamics     []*Body
	kinematics   []*Body
	statics      []*Body
}

func newBodyStore() *bodyStore {
	return &bodyStore{
		byID:         make(map[uint64]*Body),
		byRenderable: make(map[uint64]*Body),
	}
}

func (s *bodyStore) add(b *Body) bool {
	if _, exists := s.byID[b.ID]; exists {
		return false
	}
	s.byID[b.ID] = b
	if b.Renderable != 0 {
		s.byRenderable[b.Renderable] = b
	}
	switch b.Type {
	case BodyDynamic:
		s.dynamics = append(s.dynamics, b)
	case BodyKinematic:
		s.kinematics = append(s.kinematics, b)
	default:
		s.statics = append(s.statics, b)
	}
	return true
}

// remove deletes a body by id. Removing an absent id is a no-op.
func (s *bodyStore) remove(id uint64) *Body {
	b, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	if b.Renderable != 0 {
		delete(s.byRenderable, b.Renderable)
	}
	switch b.Type {
	case BodyDynamic:
		s.dynamics = removeBody(s.dynamics, id)
	case BodyKinematic:
		s.kinematics = removeBody(s.kinematics, id)
	default:
		s.statics = removeBody(s.statics, id)
	}
	return b
}

func removeBody(list []*Body, id uint64) []*Body {
	for i, b := range list {
		if b.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (s *bodyStore) get(id uint64) (*Body, bool) {
	b, ok := s.byID[id]
	return b, ok
}

func (s *bodyStore) getByRenderable(renderable uint64) (*Body, bool) {
	b, ok := s.byRenderable[renderable]
	return b, ok
}

func (s *bodyStore) count() int {
	return len(s.byID)
}

// all returns every body, dynamics first. The slice is rebuilt per call;
// callers hold it only within a step.
func (s *bodyStore) all() []*Body {
	out := make([]*Body, 0, s.count())
	out = append(out, s.dynamics...)
	out = append(out, s.kinematics...)
	out = append(out, s.statics...)
	return out
}
