package pkgnaming

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/ospackage"
	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
)

// NamingScheme is the interface every package naming scheme must implement.
type NamingScheme interface {
	// Name returns the package name for spec, e.g. "zlib-1.2.8-GCC-4.9.2".
	Name(spec ospackage.Spec) string

	// Version returns the package version for spec.
	Version(spec ospackage.Spec) string

	// Release returns the package release (FPM "iteration").
	Release() string
}

// Constructor builds a fresh NamingScheme.
type Constructor func() NamingScheme

// Registry maps scheme identifiers to constructors. Schemes are added by
// explicit Register calls.
type Registry struct {
	schemes map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{schemes: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in schemes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EasyBuildPNSName, func() NamingScheme { return &EasyBuildPNS{} })
	return r
}

// Register makes a scheme available under name, replacing any earlier one.
func (r *Registry) Register(name string, c Constructor) {
	r.schemes[name] = c
}

// Names returns the registered scheme identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve instantiates the scheme registered as selected.
func (r *Registry) Resolve(selected string) (*ActiveScheme, error) {
	c, ok := r.schemes[selected]
	if !ok {
		return nil, fmt.Errorf("%w: selected package naming scheme %s could not be found in [%s]",
			config.ErrConfiguration, selected, strings.Join(r.Names(), ", "))
	}
	return &ActiveScheme{id: selected, scheme: c()}, nil
}

// ActiveScheme is the naming scheme selected for this run.
type ActiveScheme struct {
	id     string
	scheme NamingScheme
}

// ID returns the identifier the scheme was selected by.
func (a *ActiveScheme) ID() string {
	return a.id
}

// Name determines the package name
func (a *ActiveScheme) Name(spec ospackage.Spec) string {
	return a.scheme.Name(spec)
}

// Version determines the package version
func (a *ActiveScheme) Version(spec ospackage.Spec) string {
	return a.scheme.Version(spec)
}

// Release determines the package release
func (a *ActiveScheme) Release() string {
	return a.scheme.Release()
}

// Resolver resolves the selected scheme once and hands out the same
// ActiveScheme on every later call.
type Resolver struct {
	registry *Registry
	selected string

	once   sync.Once
	active *ActiveScheme
	err    error
}

func NewResolver(registry *Registry, selected string) *Resolver {
	return &Resolver{registry: registry, selected: selected}
}

// Active returns the memoized active scheme, or the memoized resolution error.
func (r *Resolver) Active() (*ActiveScheme, error) {
	r.once.Do(func() {
		log := logger.Logger()
		r.active, r.err = r.registry.Resolve(r.selected)
		if r.err != nil {
			log.Errorf("Failed to resolve package naming scheme: %v", r.err)
			return
		}
		log.Debugf("Using package naming scheme %s", r.selected)
	})
	return r.active, r.err
}
