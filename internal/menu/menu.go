package menu

import (
	"strings"

	"github.com/roach88/menukit/internal/codec"
)

// Menu is a named definition waiting to be registered. Menus form a tree by
// dotted path: "settings.profile" is a child of "settings" and, unless
// detached, carries the parent's slots ahead of its own.
type Menu struct {
	path     string
	id       string
	version  uint64
	detached bool
	modal    bool
	def      Definition
}

// Option configures a Menu.
type Option func(*Menu)

// WithID sets the identifier prefix. It defaults to the path; a shorter id
// leaves more of each identifier for state.
func WithID(id string) Option {
	return func(m *Menu) { m.id = id }
}

// WithVersion sets the schema version written into every blob. Bump it when
// slot meanings change without their types changing, so messages sent
// before the change are rejected instead of misread.
func WithVersion(version uint64) Option {
	return func(m *Menu) { m.version = version }
}

// Detached makes a child menu own only its own slots.
func Detached() Option {
	return func(m *Menu) { m.detached = true }
}

// AsModal makes the menu render as a modal with text inputs.
func AsModal() Option {
	return func(m *Menu) { m.modal = true }
}

// New returns a menu at path.
func New(path string, def Definition, opts ...Option) *Menu {
	m := &Menu{path: path, id: path, def: def}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the menu's dotted path.
func (m *Menu) Path() string {
	return m.path
}

// parentPath returns the path of the menu's parent, or "" at the top level.
func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func validPath(path string) bool {
	if path == "" || strings.Contains(path, codec.Separator) {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}
