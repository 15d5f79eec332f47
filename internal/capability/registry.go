package capability

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/ast"
)

// Observer receives registry events.
type Observer interface {
	CapabilityRegistered(name string, replaced bool)
	RegistrySize(n int)
}

// Registry maps capability names to schematics. It is seeded with the
// built-in catalog and extended by Register. Every read and write takes the
// lock for the duration of a single map operation only.
//
// Registering a name twice replaces the earlier schematic (last write wins);
// the replacement is logged. User registrations shadow built-ins.
type Registry struct {
	mu         sync.RWMutex
	builtin    map[string]*Schematic
	registered map[string]*Schematic

	logger   *zap.Logger
	observer Observer
}

type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver reports registrations to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// WithoutBuiltins starts the registry empty.
func WithoutBuiltins() Option {
	return func(r *Registry) { r.builtin = map[string]*Schematic{} }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		registered: make(map[string]*Schematic),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.builtin == nil {
		r.builtin = builtinSchematics()
	}
	return r
}

// Register stores decl under its name and returns the stored schematic.
func (r *Registry) Register(decl *ast.CapabilityDecl) *Schematic {
	s := FromDecl(decl)
	r.RegisterSchematic(s)
	return s
}

// RegisterSchematic stores s under s.Name.
func (r *Registry) RegisterSchematic(s *Schematic) {
	r.mu.Lock()
	prev, replaced := r.registered[s.Name]
	r.registered[s.Name] = s
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("capability registered twice, keeping the later declaration",
			zap.String("capability", s.Name),
			zap.Int("previous_line", prev.Origin.Line),
			zap.Int("line", s.Origin.Line))
	} else {
		r.logger.Debug("capability registered", zap.String("capability", s.Name))
	}
	if r.observer != nil {
		r.observer.CapabilityRegistered(s.Name, replaced)
		r.observer.RegistrySize(r.Len())
	}
}

// Resolve finds a schematic by name. Paths (std::ops::Add) fall back to
// their last segment.
func (r *Registry) Resolve(name string) (*Schematic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.lookup(name); ok {
		return s, true
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return r.lookup(name[i+2:])
	}
	return nil, false
}

func (r *Registry) lookup(name string) (*Schematic, bool) {
	if s, ok := r.registered[name]; ok {
		return s, true
	}
	s, ok := r.builtin[name]
	return s, ok
}

// Names lists every resolvable name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	seen := make(map[string]bool, len(r.builtin)+len(r.registered))
	for n := range r.builtin {
		seen[n] = true
	}
	for n := range r.registered {
		seen[n] = true
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len is the number of resolvable names.
func (r *Registry) Len() int {
	return len(r.Names())
}
