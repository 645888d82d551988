package datasource

import "fmt"

// Registry resolves configured data source ids to their accessors. Order is
// registration order, which follows the configuration file, so "the default
// source" is a stable notion.
type Registry struct {
	order []string
	byID  map[string]Accessor
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Accessor)}
}

// Add registers an accessor under its id. Duplicate ids are a configuration
// mistake and rejected.
func (r *Registry) Add(a Accessor) error {
	id := a.ID()
	if id == "" {
		return fmt.Errorf("data source has no id")
	}
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("duplicate data source id %q", id)
	}
	r.byID[id] = a
	r.order = append(r.order, id)
	return nil
}

// Get returns the accessor for id, or a NotFoundError.
func (r *Registry) Get(id string) (Accessor, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Source: id}
	}
	return a, nil
}

// Default returns the first registered filesystem source, or the first
// source of any kind when no filesystem source exists.
func (r *Registry) Default() (Accessor, error) {
	for _, id := range r.order {
		if a := r.byID[id]; a.Provider() == ProviderFilesystem {
			return a, nil
		}
	}
	if len(r.order) > 0 {
		return r.byID[r.order[0]], nil
	}
	return nil, &NotFoundError{Source: "(default)"}
}

// All returns the accessors in registration order.
func (r *Registry) All() []Accessor {
	out := make([]Accessor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
