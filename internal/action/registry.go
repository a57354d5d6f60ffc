package action

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownAction = errors.New("unknown action")

type entry struct {
	id      string
	title   string
	run     func() error
	seq     int
	binding *Binding
}

// Registry maps action ids to closures and optional hotkey bindings.
type Registry struct {
	entries map[string]*entry
	nextSeq int
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// Register adds an action without a hotkey. Registering an existing id replaces the whole
// entry, binding included, and keeps its position in the registration order.
func (r *Registry) Register(id, title string, run func() error) {
	if e, ok := r.entries[id]; ok {
		e.title, e.run, e.binding = title, run, nil
		return
	}
	r.entries[id] = &entry{id: id, title: title, run: run, seq: r.nextSeq}
	r.nextSeq++
}

func (r *Registry) RegisterWithHotkey(id, title string, run func() error, b Binding) {
	r.Register(id, title, run)
	bb := b
	r.entries[id].binding = &bb
}

func (r *Registry) Bind(id string, b Binding) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	bb := b
	e.binding = &bb
	return nil
}

func (r *Registry) Unbind(id string) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	e.binding = nil
	return nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

func (r *Registry) BindingOf(id string) (Binding, bool) {
	e, ok := r.entries[id]
	if !ok || e.binding == nil {
		return Binding{}, false
	}
	return *e.binding, true
}

// Run invokes one action by id.
func (r *Registry) Run(id string) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	if e.run == nil {
		return nil
	}
	return e.run()
}

// Info describes a registered action.
type Info struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Binding *Binding `json:"-"`
	Hotkey  string   `json:"hotkey,omitempty"`
	Context string   `json:"context,omitempty"`
}

// Actions lists every action in registration order.
func (r *Registry) Actions() []Info {
	out := make([]Info, 0, len(r.entries))
	for _, e := range r.sorted() {
		info := Info{ID: e.id, Title: e.title}
		if e.binding != nil {
			b := *e.binding
			info.Binding = &b
			info.Hotkey = b.Hotkey.String()
			info.Context = b.Context.String()
		}
		out = append(out, info)
	}
	return out
}

func (r *Registry) sorted() []*entry {
	es := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		es = append(es, e)
	}
	slices.SortFunc(es, func(a, b *entry) int { return a.seq - b.seq })
	return es
}

// Dispatch runs the actions whose chord was just pressed in this tick. A chord matches
// when its key went down this tick and the held modifiers equal its modifier set. For
// each key a binding in the active context wins over a Global one, then the earliest
// registered wins. The matched ids are collected first and then run in registration order,
// so an action may register or rebind others without affecting this tick.
func (r *Registry) Dispatch(in *Input, active Context) ([]string, error) {
	mods := in.Modifiers()
	chosen := map[Key]*entry{}
	for _, e := range r.sorted() {
		if e.binding == nil {
			continue
		}
		b := *e.binding
		if b.Hotkey.Mods != mods || !in.JustPressed(b.Hotkey.Key) {
			continue
		}
		if b.Context != Global && b.Context != active {
			continue
		}
		cur, ok := chosen[b.Hotkey.Key]
		if !ok || (cur.binding.Context == Global && b.Context != Global) {
			chosen[b.Hotkey.Key] = e
		}
	}
	if len(chosen) == 0 {
		return nil, nil
	}

	matched := make([]*entry, 0, len(chosen))
	for _, e := range chosen {
		matched = append(matched, e)
	}
	slices.SortFunc(matched, func(a, b *entry) int { return a.seq - b.seq })

	ids := make([]string, 0, len(matched))
	var errs []error
	for _, e := range matched {
		ids = append(ids, e.id)
		if e.run == nil {
			continue
		}
		if err := e.run(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.id, err))
		}
	}
	return ids, errors.Join(errs...)
}

// ApplyOverrides rebinds actions from a settings map of id to "context:chord".
// An empty value unbinds. Valid entries are applied even when others fail.
func (r *Registry) ApplyOverrides(overrides map[string]string) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var errs []error
	for _, id := range ids {
		spec := strings.TrimSpace(overrides[id])
		if spec == "" {
			if err := r.Unbind(id); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		b, err := ParseBinding(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if err := r.Bind(id, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Conflict is a chord bound to more than one action in the same context.
type Conflict struct {
	Binding Binding
	IDs     []string
}

func (r *Registry) Conflicts() []Conflict {
	byBinding := map[Binding][]string{}
	var order []Binding
	for _, e := range r.sorted() {
		if e.binding == nil {
			continue
		}
		b := *e.binding
		if _, seen := byBinding[b]; !seen {
			order = append(order, b)
		}
		byBinding[b] = append(byBinding[b], e.id)
	}
	var out []Conflict
	for _, b := range order {
		if ids := byBinding[b]; len(ids) > 1 {
			out = append(out, Conflict{Binding: b, IDs: ids})
		}
	}
	return out
}
