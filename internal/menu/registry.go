package menu

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/state"
)

// entry is a registered menu: the definition plus everything build derived.
type entry struct {
	path     string
	id       string
	detached bool
	modal    bool
	def      Definition
	parent   *entry
	schema   state.Schema
	shared   []*sharedCell
}

// Registry is the immutable set of menus a dispatcher serves. Build runs once
// per menu, parents before children, when the registry is created.
type Registry struct {
	maxIDLength int
	byPath      map[string]*entry
	byID        map[string]*entry
	paths       []string
}

// Override replaces a menu's id or version at registration.
type Override struct {
	ID      string
	Version *uint64
}

type registryConfig struct {
	maxIDLength int
	overrides   map[string]Override
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryConfig)

// WithMaxIDLength sets the identifier length limit. Default: 100.
func WithMaxIDLength(n int) RegistryOption {
	return func(c *registryConfig) { c.maxIDLength = n }
}

// WithOverride replaces the id or version of the menu at path.
func WithOverride(path string, o Override) RegistryOption {
	return func(c *registryConfig) { c.overrides[path] = o }
}

// NewRegistry runs build for every menu and freezes the result.
func NewRegistry(menus []*Menu, opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{maxIDLength: DefaultMaxIDLength, overrides: make(map[string]Override)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxIDLength <= 0 {
		return nil, newError(ErrCodeInvalidMenu, "", "", nil, "max identifier length %d", cfg.maxIDLength)
	}

	r := &Registry{
		maxIDLength: cfg.maxIDLength,
		byPath:      make(map[string]*entry, len(menus)),
		byID:        make(map[string]*entry, len(menus)),
	}

	for _, m := range menus {
		if m == nil || m.def == nil {
			return nil, newError(ErrCodeInvalidMenu, "", "", nil, "menu without a definition")
		}
	}

	// Parents build first so children can extend their schemas.
	sorted := slices.Clone(menus)
	slices.SortStableFunc(sorted, func(a, b *Menu) int {
		return strings.Count(a.path, ".") - strings.Count(b.path, ".")
	})

	for _, m := range sorted {
		e := &entry{
			path:     m.path,
			id:       m.id,
			detached: m.detached,
			modal:    m.modal,
			def:      m.def,
		}
		version := m.version
		if o, ok := cfg.overrides[m.path]; ok {
			if o.ID != "" {
				e.id = o.ID
			}
			if o.Version != nil {
				version = *o.Version
			}
		}
		if err := r.add(e, version); err != nil {
			return nil, err
		}
	}
	for path := range cfg.overrides {
		if _, ok := r.byPath[path]; !ok {
			return nil, newError(ErrCodeInvalidMenu, path, "", nil, "override for an unregistered menu")
		}
	}
	return r, nil
}

func (r *Registry) add(e *entry, version uint64) error {
	if !validPath(e.path) {
		return newError(ErrCodeInvalidMenu, e.path, "", nil, "path must be dotted segments without %q", codec.Separator)
	}
	if e.id == "" || strings.Contains(e.id, codec.Separator) {
		return newError(ErrCodeInvalidMenu, e.path, "", nil, "id %q must be non-empty and free of %q", e.id, codec.Separator)
	}
	if _, dup := r.byPath[e.path]; dup {
		return newError(ErrCodeInvalidMenu, e.path, "", nil, "path registered twice")
	}
	if other, dup := r.byID[e.id]; dup {
		return newError(ErrCodeInvalidMenu, e.path, "", nil, "id %q already used by %s", e.id, other.path)
	}
	if pp := parentPath(e.path); pp != "" {
		parent, ok := r.byPath[pp]
		if !ok {
			return newError(ErrCodeInvalidMenu, e.path, "", nil, "parent menu %s is not registered", pp)
		}
		e.parent = parent
	}

	var schema state.Schema
	if e.parent != nil && !e.detached {
		schema = e.parent.schema.Clone()
	}
	schema.Version = version
	if err := r.build(e, &schema); err != nil {
		return err
	}
	e.schema = schema

	r.byPath[e.path] = e
	r.byID[e.id] = e
	r.paths = append(r.paths, e.path)
	return nil
}

func (r *Registry) build(e *entry, schema *state.Schema) (err error) {
	c := newContext(context.Background(), e, BuildPhase{Schema: schema}, nil)
	defer func() {
		if p := recover(); p != nil {
			err = newError(ErrCodeInvalidMenu, e.path, "", nil, "build panicked: %v", p)
		}
	}()
	e.def(c)
	if err := c.endPass(); err != nil {
		return wrapPass(ErrCodeInvalidMenu, e.path, "", err)
	}
	return nil
}

// MaxIDLength returns the identifier length limit.
func (r *Registry) MaxIDLength() int {
	return r.maxIDLength
}

// Paths lists registered menu paths, parents before children.
func (r *Registry) Paths() []string {
	return slices.Clone(r.paths)
}

// Schema returns the slot schema build derived for path.
func (r *Registry) Schema(path string) (state.Schema, error) {
	e, err := r.lookup(path)
	if err != nil {
		return state.Schema{}, err
	}
	return e.schema.Clone(), nil
}

// Modal reports whether path is registered and renders as a modal.
func (r *Registry) Modal(path string) bool {
	e, ok := r.byPath[path]
	return ok && e.modal
}

// Describe summarizes a registered menu for diagnostics.
func (r *Registry) Describe(path string) (string, error) {
	e, err := r.lookup(path)
	if err != nil {
		return "", err
	}
	kind := "message"
	if e.modal {
		kind = "modal"
	}
	if e.detached {
		kind += ", detached"
	}
	return fmt.Sprintf("%s id=%s (%s) %s", e.path, e.id, kind, e.schema.Describe()), nil
}

func (r *Registry) lookup(path string) (*entry, error) {
	e, ok := r.byPath[path]
	if !ok {
		return nil, newError(ErrCodeUnknownMenu, path, "", nil, "no menu registered at this path")
	}
	return e, nil
}

func (r *Registry) lookupID(id string) (*entry, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, newError(ErrCodeUnknownMenu, "", "", nil, "no menu registered with id %q", id)
	}
	return e, nil
}
