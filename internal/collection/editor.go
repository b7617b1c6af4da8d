package collection

import "strings"

// DefaultPageSize is the number of rows in one page window.
const DefaultPageSize = 20

// EmptyState says why a page window has no rows.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	EmptyMaster
	EmptyFiltered
)

// Message returns the operator-facing text for the empty state.
func (e EmptyState) Message() string {
	switch e {
	case EmptyMaster:
		return "No keys configured yet."
	case EmptyFiltered:
		return "No keys match the current search."
	}
	return ""
}

// Window is one rendered page of the filtered view.
type Window struct {
	Items          []string
	Offset         int
	Page           int
	TotalPages     int
	Empty          EmptyState
	PrevDisabled   bool
	NextDisabled   bool
	ControlsHidden bool
}

// Editor owns a master collection, its filtered view and a page window.
//
// filtered is always master filtered by filter in master order, and page
// always lies in [1, TotalPages()].
type Editor struct {
	master   []string
	filter   string
	filtered []string
	page     int
	pageSize int
	onRender func(Window)
}

// New creates an editor. A pageSize below 1 falls back to DefaultPageSize.
func New(pageSize int) *Editor {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Editor{page: 1, pageSize: pageSize}
}

// OnRender registers fn to receive every rendered window.
func (e *Editor) OnRender(fn func(Window)) {
	e.onRender = fn
}

// SetMaster replaces the master collection and resets filter and page.
func (e *Editor) SetMaster(items []string) {
	e.master = dedupe(nil, items)
	e.filter = ""
	e.filtered = append([]string(nil), e.master...)
	e.page = 1
	e.Render()
}

// Search filters the master collection by a case-insensitive substring.
func (e *Editor) Search(term string) {
	e.filter = strings.ToLower(term)
	e.applyFilter()
	e.page = 1
	e.Render()
}

// AddBulk merges items into master and returns how many were new.
// The current page is kept unless it falls out of range.
func (e *Editor) AddBulk(items []string) int {
	before := len(e.master)
	e.master = dedupe(e.master, items)
	e.applyFilter()
	e.Render()
	return len(e.master) - before
}

// DeleteOne removes every occurrence of value and reports whether any was removed.
func (e *Editor) DeleteOne(value string) bool {
	return e.DeleteBulk([]string{value}) > 0
}

// DeleteBulk removes every occurrence of each value and returns the count removed.
func (e *Editor) DeleteBulk(values []string) int {
	if len(values) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}
	kept := e.master[:0:0]
	removed := 0
	for _, item := range e.master {
		if _, ok := drop[item]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	e.master = kept
	e.applyFilter()
	e.Render()
	return removed
}

// GoToPage moves to page n. It is a no-op outside [1, TotalPages()].
func (e *Editor) GoToPage(n int) bool {
	if n < 1 || n > e.TotalPages() {
		return false
	}
	e.page = n
	e.Render()
	return true
}

// NextPage advances one page when possible.
func (e *Editor) NextPage() bool {
	return e.GoToPage(e.page + 1)
}

// PrevPage goes back one page when possible.
func (e *Editor) PrevPage() bool {
	return e.GoToPage(e.page - 1)
}

// Render clamps the page and returns the current window.
func (e *Editor) Render() Window {
	total := e.TotalPages()
	if e.page > total {
		e.page = total
	}
	if e.page < 1 {
		e.page = 1
	}

	start := (e.page - 1) * e.pageSize
	end := start + e.pageSize
	if end > len(e.filtered) {
		end = len(e.filtered)
	}

	w := Window{
		Offset:         start,
		Page:           e.page,
		TotalPages:     total,
		PrevDisabled:   e.page <= 1,
		NextDisabled:   e.page >= total,
		ControlsHidden: total <= 1,
	}
	if start < end {
		w.Items = append([]string(nil), e.filtered[start:end]...)
	}
	if len(w.Items) == 0 {
		// The page is clamped above, so an empty window means an empty view.
		w.Empty = EmptyFiltered
		if len(e.master) == 0 {
			w.Empty = EmptyMaster
		}
	}
	if e.onRender != nil {
		e.onRender(w)
	}
	return w
}

// TotalPages is max(1, ceil(len(filtered)/pageSize)).
func (e *Editor) TotalPages() int {
	if len(e.filtered) == 0 {
		return 1
	}
	return (len(e.filtered) + e.pageSize - 1) / e.pageSize
}

// Master returns a copy of the full collection.
func (e *Editor) Master() []string {
	return append([]string{}, e.master...)
}

// Filtered returns a copy of the filtered view.
func (e *Editor) Filtered() []string {
	return append([]string{}, e.filtered...)
}

func (e *Editor) Filter() string { return e.filter }
func (e *Editor) Page() int      { return e.page }
func (e *Editor) PageSize() int  { return e.pageSize }
func (e *Editor) Len() int       { return len(e.master) }

func (e *Editor) applyFilter() {
	if e.filter == "" {
		e.filtered = append(e.filtered[:0:0], e.master...)
		return
	}
	out := make([]string, 0, len(e.master))
	for _, item := range e.master {
		if strings.Contains(strings.ToLower(item), e.filter) {
			out = append(out, item)
		}
	}
	e.filtered = out
}

// dedupe appends items to base, skipping values already present.
func dedupe(base, items []string) []string {
	seen := make(map[string]struct{}, len(base)+len(items))
	out := make([]string, 0, len(base)+len(items))
	for _, v := range base {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range items {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
