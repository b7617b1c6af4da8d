package masking

// Store keeps one Field per element ID. Bindings are never shared across rows.
type Store struct {
	fields map[string]*Field
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{fields: make(map[string]*Field)}
}

// Bind creates the binding for id and applies the initial mask.
func (s *Store) Bind(id, value string, storage Storage) *Field {
	f := NewField(value, storage)
	f.InitialMask()
	s.fields[id] = f
	return f
}

// Get returns the binding for id.
func (s *Store) Get(id string) (*Field, bool) {
	f, ok := s.fields[id]
	return f, ok
}

// Has reports whether id is under masking.
func (s *Store) Has(id string) bool {
	_, ok := s.fields[id]
	return ok
}

// Value returns the true value of id.
func (s *Store) Value(id string) (string, bool) {
	f, ok := s.fields[id]
	if !ok {
		return "", false
	}
	return f.TrueValue(), true
}

// Displayed returns what the control for id currently shows.
func (s *Store) Displayed(id string) string {
	if f, ok := s.fields[id]; ok {
		return f.Displayed()
	}
	return ""
}

// Drop removes the binding when its row goes away.
func (s *Store) Drop(id string) {
	delete(s.fields, id)
}

// Len returns the number of live bindings.
func (s *Store) Len() int {
	return len(s.fields)
}

func (s *Store) unmask(e Event) {
	if f, ok := s.fields[e.Target.ID]; ok {
		f.Unmask()
	}
}

func (s *Store) mask(e Event) {
	if f, ok := s.fields[e.Target.ID]; ok {
		f.Mask()
	}
}

func (s *Store) edit(e Event) {
	if f, ok := s.fields[e.Target.ID]; ok {
		f.Edit(e.Value)
	}
}
