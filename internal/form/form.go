// Package form turns the backend configuration document into editable
// controls and serializes them back into a save payload.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/masking"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrWrongKind    = errors.New("field does not support this edit")
	ErrUnknownRow   = errors.New("unknown row")
)

// Row is one entry of a free-form list. Values of sensitive rows are held in
// the masking store under the row ID.
type Row struct {
	ID    string
	Value string
}

// Pair is one key/value row of a mapping field.
type Pair struct {
	ID    string
	Key   string
	Value string
}

// Budget is the thinking budget of one model row. ID is shared with the
// linked model row.
type Budget struct {
	ID    string
	Model string
	Value int
}

// Form holds every control populated from one configuration document.
type Form struct {
	doc      []byte
	scalars  map[string]string
	bools    map[string]bool
	editors  map[string]*collection.Editor
	lists    map[string][]Row
	pairs    map[string][]Pair
	budgets  map[string][]Budget
	store    *masking.Store
	dispatch *masking.Dispatcher
	newID    func() string
	dirty    bool
	edits    uint64
}

// Populate fills missing keys with defaults and builds the form. pageSize
// applies to every key collection editor.
func Populate(doc []byte, pageSize int) (*Form, error) {
	filled, err := ApplyDefaults(doc)
	if err != nil {
		return nil, err
	}

	f := &Form{
		doc:      filled,
		scalars:  make(map[string]string),
		bools:    make(map[string]bool),
		editors:  make(map[string]*collection.Editor),
		lists:    make(map[string][]Row),
		pairs:    make(map[string][]Pair),
		budgets:  make(map[string][]Budget),
		store:    masking.NewStore(),
		dispatch: masking.NewDispatcher(),
		newID:    uuid.NewString,
	}
	masking.BindSensitive(f.dispatch, f.store)

	for _, spec := range Schema {
		r := gjson.GetBytes(filled, spec.Key)
		switch spec.Kind {
		case KindText, KindSelect:
			f.scalars[spec.Key] = r.String()
		case KindNumber:
			f.scalars[spec.Key] = numberText(r)
		case KindBool:
			f.bools[spec.Key] = r.Bool()
		case KindSensitive:
			f.store.Bind(spec.Key, r.String(), spec.Storage)
		case KindKeyCollection:
			editor := collection.New(pageSize)
			editor.SetMaster(stringsOf(r))
			f.editors[spec.Key] = editor
		case KindList, KindSensitiveList:
			for _, v := range stringsOf(r) {
				f.appendRow(spec, v)
			}
		case KindPairs:
			if !r.IsObject() {
				continue
			}
			r.ForEach(func(k, v gjson.Result) bool {
				f.pairs[spec.Key] = append(f.pairs[spec.Key], Pair{ID: f.newID(), Key: k.String(), Value: v.String()})
				return true
			})
		}
	}

	// Budget rows follow their model rows, so they are built last.
	for _, spec := range Schema {
		if spec.Kind != KindBudgetMap {
			continue
		}
		known := make(map[string]int)
		if r := gjson.GetBytes(filled, spec.Key); r.IsObject() {
			r.ForEach(func(k, v gjson.Result) bool {
				known[k.String()] = clampBudget(int(v.Int()))
				return true
			})
		}
		rows := make([]Budget, 0, len(f.lists[spec.Source]))
		for _, row := range f.lists[spec.Source] {
			value, ok := known[row.Value]
			if !ok {
				value = DefaultBudget
			}
			rows = append(rows, Budget{ID: row.ID, Model: row.Value, Value: value})
		}
		f.budgets[spec.Key] = rows
	}

	return f, nil
}

// Dirty reports whether anything was edited since Populate.
func (f *Form) Dirty() bool { return f.dirty }

// Generation counts edits since Populate. Snapshot it when serializing a
// payload and hand it back to MarkSaved.
func (f *Form) Generation() uint64 { return f.edits }

// MarkSaved clears the dirty flag only if nothing was edited after gen was
// taken. It reports whether the form is now clean.
func (f *Form) MarkSaved(gen uint64) bool {
	if f.edits != gen {
		return false
	}
	f.dirty = false
	return true
}

func (f *Form) touch() {
	f.dirty = true
	f.edits++
}

// Value returns the displayed text of a scalar control. Sensitive controls
// return their displayed value, which is the sentinel while unfocused.
func (f *Form) Value(key string) string {
	if f.store.Has(key) {
		return f.store.Displayed(key)
	}
	return f.scalars[key]
}

// Bool returns the state of a checkbox.
func (f *Form) Bool(key string) bool { return f.bools[key] }

// Editor returns the collection editor of a key collection field.
func (f *Form) Editor(key string) *collection.Editor { return f.editors[key] }

// Masked returns the masking binding for a control or row ID.
func (f *Form) Masked(id string) (*masking.Field, bool) { return f.store.Get(id) }

// Rows returns the list rows of key with displayed values.
func (f *Form) Rows(key string) []Row {
	rows := make([]Row, len(f.lists[key]))
	for i, row := range f.lists[key] {
		if f.store.Has(row.ID) {
			row.Value = f.store.Displayed(row.ID)
		}
		rows[i] = row
	}
	return rows
}

// Pairs returns the mapping rows of key in display order.
func (f *Form) Pairs(key string) []Pair {
	return append([]Pair(nil), f.pairs[key]...)
}

// Budgets returns the budget rows of key in model row order.
func (f *Form) Budgets(key string) []Budget {
	return append([]Budget(nil), f.budgets[key]...)
}

// Focus routes a focus-in event for the control or row id.
func (f *Form) Focus(id string) int {
	return f.dispatch.Dispatch(masking.Event{Type: masking.FocusIn, Target: f.element(id)})
}

// Blur routes a focus-out event for the control or row id.
func (f *Form) Blur(id string) int {
	return f.dispatch.Dispatch(masking.Event{Type: masking.FocusOut, Target: f.element(id)})
}

// SetText edits a text, number, select or sensitive control.
func (f *Form) SetText(key, value string) error {
	spec, err := lookupKind(key, KindText, KindNumber, KindSelect, KindSensitive)
	if err != nil {
		return err
	}
	if spec.Kind == KindSensitive {
		f.input(key, value)
	} else {
		f.scalars[key] = value
	}
	f.touch()
	return nil
}

// Toggle flips a checkbox.
func (f *Form) Toggle(key string) error {
	if _, err := lookupKind(key, KindBool); err != nil {
		return err
	}
	f.bools[key] = !f.bools[key]
	f.touch()
	return nil
}

// CycleOption moves a select control by delta through its options.
func (f *Form) CycleOption(key string, delta int) error {
	spec, err := lookupKind(key, KindSelect)
	if err != nil {
		return err
	}
	if len(spec.Options) == 0 {
		return nil
	}
	idx := 0
	for i, opt := range spec.Options {
		if opt == f.scalars[key] {
			idx = i
			break
		}
	}
	n := len(spec.Options)
	f.scalars[key] = spec.Options[((idx+delta)%n+n)%n]
	f.touch()
	return nil
}

// AddKeys extracts keys from pasted text into a key collection.
func (f *Form) AddKeys(key, text string) (collection.Notice, error) {
	spec, err := lookupKind(key, KindKeyCollection)
	if err != nil {
		return collection.Notice{}, err
	}
	notice := collection.BulkAdd(f.editors[key], spec.Extractor, text)
	if notice.Count > 0 {
		f.touch()
	}
	return notice, nil
}

// DeleteKeys extracts keys from pasted text and removes them.
func (f *Form) DeleteKeys(key, text string) (collection.Notice, error) {
	spec, err := lookupKind(key, KindKeyCollection)
	if err != nil {
		return collection.Notice{}, err
	}
	notice := collection.BulkDelete(f.editors[key], spec.Extractor, text)
	if notice.Count > 0 {
		f.touch()
	}
	return notice, nil
}

// DeleteKey removes one key from a key collection.
func (f *Form) DeleteKey(key, value string) (bool, error) {
	if _, err := lookupKind(key, KindKeyCollection); err != nil {
		return false, err
	}
	removed := f.editors[key].DeleteOne(value)
	if removed {
		f.touch()
	}
	return removed, nil
}

// AddRow appends a list row and returns its ID. Sensitive rows start masked.
func (f *Form) AddRow(key, value string) (string, error) {
	spec, err := lookupKind(key, KindList, KindSensitiveList)
	if err != nil {
		return "", err
	}
	id := f.appendRow(spec, value)
	if budgetKey, ok := linkedBudget(key); ok {
		f.budgets[budgetKey] = append(f.budgets[budgetKey], Budget{ID: id, Model: value, Value: DefaultBudget})
	}
	f.touch()
	return id, nil
}

// SetRow edits a list row. Editing a model row renames its budget row.
func (f *Form) SetRow(key, id, value string) error {
	if _, err := lookupKind(key, KindList, KindSensitiveList); err != nil {
		return err
	}
	idx := rowIndex(f.lists[key], id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	if f.store.Has(id) {
		f.input(id, value)
	} else {
		f.lists[key][idx].Value = value
	}
	if budgetKey, ok := linkedBudget(key); ok {
		for i := range f.budgets[budgetKey] {
			if f.budgets[budgetKey][i].ID == id {
				f.budgets[budgetKey][i].Model = value
			}
		}
	}
	f.touch()
	return nil
}

// RemoveRow deletes a list row, its masking binding and any linked budget row.
func (f *Form) RemoveRow(key, id string) error {
	if _, err := lookupKind(key, KindList, KindSensitiveList); err != nil {
		return err
	}
	idx := rowIndex(f.lists[key], id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	f.lists[key] = append(f.lists[key][:idx], f.lists[key][idx+1:]...)
	f.store.Drop(id)
	if budgetKey, ok := linkedBudget(key); ok {
		kept := f.budgets[budgetKey][:0]
		for _, b := range f.budgets[budgetKey] {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		f.budgets[budgetKey] = kept
	}
	f.touch()
	return nil
}

// AddPair appends a mapping row and returns its ID.
func (f *Form) AddPair(key, k, v string) (string, error) {
	if _, err := lookupKind(key, KindPairs); err != nil {
		return "", err
	}
	id := f.newID()
	f.pairs[key] = append(f.pairs[key], Pair{ID: id, Key: k, Value: v})
	f.touch()
	return id, nil
}

// SetPair edits a mapping row.
func (f *Form) SetPair(key, id, k, v string) error {
	if _, err := lookupKind(key, KindPairs); err != nil {
		return err
	}
	for i := range f.pairs[key] {
		if f.pairs[key][i].ID == id {
			f.pairs[key][i].Key = k
			f.pairs[key][i].Value = v
			f.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownRow, id)
}

// RemovePair deletes a mapping row.
func (f *Form) RemovePair(key, id string) error {
	if _, err := lookupKind(key, KindPairs); err != nil {
		return err
	}
	for i, p := range f.pairs[key] {
		if p.ID == id {
			f.pairs[key] = append(f.pairs[key][:i], f.pairs[key][i+1:]...)
			f.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownRow, id)
}

// SetBudget parses text into the budget of row id, clamped to
// [BudgetMin, BudgetMax]. Non-numeric text counts as 0.
func (f *Form) SetBudget(key, id, text string) (int, error) {
	if _, err := lookupKind(key, KindBudgetMap); err != nil {
		return 0, err
	}
	value := ParseBudget(text)
	for i := range f.budgets[key] {
		if f.budgets[key][i].ID == id {
			f.budgets[key][i].Value = value
			f.touch()
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownRow, id)
}

// Generate stores a fresh token in a field that accepts one: the control
// itself for a sensitive field, or a new row for a sensitive list. The token
// starts masked. It returns the token and the ID it was stored under.
func (f *Form) Generate(key string) (string, string, error) {
	spec, err := lookupKind(key, KindSensitive, KindSensitiveList)
	if err != nil {
		return "", "", err
	}
	if !spec.Generate {
		return "", "", fmt.Errorf("%w: %s", ErrWrongKind, key)
	}
	token, err := GenerateToken()
	if err != nil {
		return "", "", err
	}
	if spec.Kind == KindSensitive {
		f.store.Bind(key, token, spec.Storage)
		f.touch()
		return token, key, nil
	}
	id, err := f.AddRow(key, token)
	return token, id, err
}

// ParseBudget converts operator input into a clamped budget. Input without a
// leading integer becomes 0.
func ParseBudget(text string) int {
	n, ok := LeadingInt(text)
	if !ok {
		return 0
	}
	return clampBudget(n)
}

// LeadingInt reads the optionally signed integer at the start of text, so
// "12.5" and "12ms" both give 12. ok is false when text has no leading digits.
// Values too large for an int saturate.
func LeadingInt(text string) (int, bool) {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	start := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(text[:end])
	if errors.Is(err, strconv.ErrRange) {
		if text[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, err == nil
}

func clampBudget(n int) int {
	if n < BudgetMin {
		return BudgetMin
	}
	if n > BudgetMax {
		return BudgetMax
	}
	return n
}

func (f *Form) appendRow(spec FieldSpec, value string) string {
	id := f.newID()
	row := Row{ID: id, Value: value}
	if spec.Kind == KindSensitiveList {
		f.store.Bind(id, value, masking.StorageText)
		row.Value = ""
	}
	f.lists[spec.Key] = append(f.lists[spec.Key], row)
	return id
}

func (f *Form) input(id, value string) {
	f.dispatch.Dispatch(masking.Event{Type: masking.Input, Target: f.element(id), Value: value})
}

func (f *Form) element(id string) masking.Element {
	el := masking.Element{ID: id}
	if f.store.Has(id) {
		el.Classes = []string{masking.SensitiveClass}
	}
	return el
}

func lookupKind(key string, kinds ...Kind) (FieldSpec, error) {
	spec, ok := Lookup(key)
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	for _, k := range kinds {
		if spec.Kind == k {
			return spec, nil
		}
	}
	return FieldSpec{}, fmt.Errorf("%w: %s", ErrWrongKind, key)
}

func linkedBudget(source string) (string, bool) {
	for _, spec := range Schema {
		if spec.Kind == KindBudgetMap && spec.Source == source {
			return spec.Key, true
		}
	}
	return "", false
}

func rowIndex(rows []Row, id string) int {
	for i, row := range rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

func stringsOf(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, item := range r.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func numberText(r gjson.Result) string {
	switch r.Type {
	case gjson.Number:
		return strconv.FormatFloat(r.Float(), 'f', -1, 64)
	case gjson.String:
		return r.String()
	}
	return ""
}

func parseNumber(text string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
