package masking

// Sentinel is displayed in place of a secret while its control is unfocused.
const Sentinel = "********"

// Storage describes how a control holds its value.
type Storage int

const (
	// StorageText controls show plaintext while revealed.
	StorageText Storage = iota
	// StorageSecret controls never show plaintext (rendered as bullets).
	StorageSecret
)

// State is the visibility state of a masked field.
type State int

const (
	Revealed State = iota
	Hidden
)

func (s State) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "revealed"
}

// Field separates the displayed value of a sensitive control from its real value.
//
// While real is absent the displayed value is the true value and is never the
// sentinel. While real is present the displayed value is either the true value
// (revealed) or the sentinel (hidden).
type Field struct {
	displayed string
	real      string
	hasReal   bool
	storage   Storage
}

// NewField creates a field showing value.
func NewField(value string, storage Storage) *Field {
	return &Field{displayed: value, storage: storage}
}

// Displayed returns what the control currently shows.
func (f *Field) Displayed() string {
	return f.displayed
}

// Storage returns the storage kind of the control.
func (f *Field) Storage() Storage {
	return f.storage
}

// Real returns the recorded real value, if any.
func (f *Field) Real() (string, bool) {
	return f.real, f.hasReal
}

// State reports whether the field is currently masked.
func (f *Field) State() State {
	if f.hasReal && f.displayed == Sentinel {
		return Hidden
	}
	return Revealed
}

// Mask hides the value behind the sentinel.
func (f *Field) Mask() {
	switch {
	case f.displayed == "":
		f.real = ""
		f.hasReal = false
	case f.displayed != Sentinel:
		f.real = f.displayed
		f.hasReal = true
		f.displayed = Sentinel
	}
}

// Unmask restores the real value for editing.
func (f *Field) Unmask() {
	if f.hasReal {
		f.displayed = f.real
		return
	}
	if f.displayed == Sentinel {
		f.displayed = ""
	}
}

// InitialMask is applied once when the control is created.
func (f *Field) InitialMask() {
	if f.storage == StorageSecret {
		if f.displayed != "" {
			f.real = f.displayed
			f.hasReal = true
		}
		return
	}
	f.Mask()
}

// Edit records an operator edit; the real value follows every keystroke.
// Typing the sentinel itself leaves the real value unchanged.
func (f *Field) Edit(value string) {
	f.displayed = value
	if value == Sentinel {
		return
	}
	f.real = value
	f.hasReal = true
}

// TrueValue recovers the value to submit. The sentinel is never returned.
func (f *Field) TrueValue() string {
	if f.hasReal && f.real != Sentinel {
		return f.real
	}
	if f.displayed == Sentinel {
		return ""
	}
	return f.displayed
}
