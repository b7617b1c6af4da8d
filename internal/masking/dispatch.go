package masking

// SensitiveClass marks elements whose values are masked while unfocused.
const SensitiveClass = "sensitive-input"

// EventType is a UI event routed through a Dispatcher.
type EventType int

const (
	FocusIn EventType = iota
	FocusOut
	Input
)

// Element is the target of an event: a control or a dynamically created row.
type Element struct {
	ID      string
	Classes []string
}

// HasClass reports whether the element carries class.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Event is a single focus or input transition.
type Event struct {
	Type   EventType
	Target Element
	Value  string
}

// Handler reacts to a dispatched event.
type Handler func(Event)

// Dispatcher binds handlers once on a common ancestor and routes each event by
// the classes of its target, so rows created later need no registration.
type Dispatcher struct {
	handlers map[EventType]map[string][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventType]map[string][]Handler)}
}

// On registers h for events of type t whose target carries class.
func (d *Dispatcher) On(t EventType, class string, h Handler) {
	byClass, ok := d.handlers[t]
	if !ok {
		byClass = make(map[string][]Handler)
		d.handlers[t] = byClass
	}
	byClass[class] = append(byClass[class], h)
}

// Dispatch runs every handler matching the event's target classes and returns
// how many ran.
func (d *Dispatcher) Dispatch(e Event) int {
	byClass := d.handlers[e.Type]
	if len(byClass) == 0 {
		return 0
	}
	n := 0
	for _, class := range e.Target.Classes {
		for _, h := range byClass[class] {
			h(e)
			n++
		}
	}
	return n
}

// BindSensitive wires the store to the sensitive class: focus reveals, blur
// masks, input records the real value.
func BindSensitive(d *Dispatcher, s *Store) {
	d.On(FocusIn, SensitiveClass, s.unmask)
	d.On(FocusOut, SensitiveClass, s.mask)
	d.On(Input, SensitiveClass, s.edit)
}
