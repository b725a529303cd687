package command

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Registry is the set of available commands. It is immutable once created
// and safe for concurrent use.
type Registry struct {
	specs map[string]*Spec
	// cats maps categories to their sorted command names.
	cats map[string][]string
}

// NewRegistry creates a registry of the given commands.
// It is an error for two commands to share a name, or for a command to have
// no name or no handler.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := Registry{
		specs: make(map[string]*Spec, len(specs)),
		cats:  make(map[string][]string),
	}
	for i := range specs {
		s := &specs[i]
		if s.Name == "" {
			return nil, errors.New("command with no name")
		}
		if s.Func == nil {
			return nil, fmt.Errorf("command %s has no handler", s.Name)
		}
		if _, ok := r.specs[s.Name]; ok {
			return nil, fmt.Errorf("duplicate command %s", s.Name)
		}
		// Copy so that callers can't modify registered commands.
		c := *s
		c.Required = slices.Clone(s.Required)
		c.Optional = slices.Clone(s.Optional)
		r.specs[c.Name] = &c
		cat := c.Category()
		r.cats[cat] = append(r.cats[cat], c.Name)
	}
	for _, names := range r.cats {
		slices.Sort(names)
	}
	return &r, nil
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// HasCategory reports whether any command is in the given category.
func (r *Registry) HasCategory(cat string) bool {
	_, ok := r.cats[cat]
	return ok
}

// Categories returns all categories in sorted order.
func (r *Registry) Categories() []string {
	return slices.Sorted(maps.Keys(r.cats))
}

// InCategory returns the sorted names of commands in a category.
func (r *Registry) InCategory(cat string) []string {
	return slices.Clone(r.cats[cat])
}

// All returns every command sorted by name.
func (r *Registry) All() []*Spec {
	s := slices.Collect(maps.Values(r.specs))
	slices.SortFunc(s, func(a, b *Spec) int { return strings.Compare(a.Name, b.Name) })
	return s
}

// Len returns the number of commands.
func (r *Registry) Len() int {
	return len(r.specs)
}
