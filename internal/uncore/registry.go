package uncore

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

// Registry owns the set of discovered domains and their free/assigned
// partition. A domain is always in exactly one of the two sets.
type Registry struct {
	lister DomainLister
	log    logr.Logger

	mu       sync.Mutex
	scheme   Scheme
	domains  map[string]Domain
	assigned map[string]struct{}
}

func NewRegistry(lister DomainLister, log logr.Logger) *Registry {
	return &Registry{
		lister:   lister,
		log:      log,
		domains:  make(map[string]Domain),
		assigned: make(map[string]struct{}),
	}
}

// Discover enumerates domains from the hardware interface. A missing root is
// the unsupported hardware case and results in an empty set. Calling it again
// re-scans: domains that are still present keep their assignment.
func (r *Registry) Discover() []Domain {
	names, err := r.lister.ListDomains()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.log.Info("uncore frequency interface not present, no domains discovered")
		} else {
			r.log.Error(err, "failed to enumerate uncore domains")
		}
		names = nil
	}

	scheme := SchemeLegacy
	selected := make([]string, 0, len(names))
	for _, name := range names {
		if isDomainBased(name) {
			selected = append(selected, name)
		}
	}
	if len(selected) > 0 {
		scheme = SchemeDomainBased
	} else {
		selected = names
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	domains := make(map[string]Domain, len(selected))
	for _, name := range selected {
		domains[name] = Domain{ID: name, Scheme: scheme}
	}
	for id := range r.assigned {
		if _, ok := domains[id]; !ok {
			r.log.V(4).Info("assigned domain vanished on re-scan", "domain", id)
			delete(r.assigned, id)
		}
	}
	r.scheme = scheme
	r.domains = domains

	r.log.V(4).Info("uncore domains discovered", "scheme", scheme.String(), "count", len(domains))
	return r.sortedLocked()
}

func (r *Registry) Scheme() Scheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheme
}

// Supported is false when the last discovery found no domains.
func (r *Registry) Supported() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.domains) > 0
}

func (r *Registry) Lookup(id string) (Domain, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.domains[id]
	return d, ok
}

func (r *Registry) Domains() []Domain {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

// IsAssigned reports whether a domain is currently bound.
func (r *Registry) IsAssigned(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.assigned[id]
	return taken
}

// Assign moves a free domain to the assigned set.
func (r *Registry) Assign(id string) (Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.domains[id]
	if !ok {
		return Domain{}, fmt.Errorf("%w: %s", ErrUnknownDomain, id)
	}
	if _, taken := r.assigned[id]; taken {
		return Domain{}, fmt.Errorf("%w: %s", ErrDomainAssigned, id)
	}
	r.assigned[id] = struct{}{}
	return d, nil
}

// Release moves an assigned domain back to the free set.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.domains[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDomain, id)
	}
	if _, taken := r.assigned[id]; !taken {
		return fmt.Errorf("%w: %s", ErrDomainNotAssigned, id)
	}
	delete(r.assigned, id)
	return nil
}

func (r *Registry) sortedLocked() []Domain {
	out := slices.Collect(maps.Values(r.domains))
	slices.SortFunc(out, func(a, b Domain) int { return strings.Compare(a.ID, b.ID) })
	return out
}
