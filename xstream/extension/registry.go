// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"sync"

	"github.com/pm4rs/xesflow/xstream"
)

// Registry is a prefix-keyed lookup table of known extensions, satisfying
// xstream.ExtensionLookup. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]xstream.ExtensionEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]xstream.ExtensionEntry{}}
}

// Register adds or replaces the entry for entry.Prefix.
func (r *Registry) Register(entry xstream.ExtensionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Prefix] = entry
}

// Get looks up an extension by its declared prefix.
func (r *Registry) Get(prefix string) (xstream.ExtensionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[prefix]
	return e, ok
}

// Remove drops the entry for prefix, returning it if present.
func (r *Registry) Remove(prefix string) (xstream.ExtensionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[prefix]
	if ok {
		delete(r.entries, prefix)
	}
	return e, ok
}

// Entries returns every registered extension, in no particular order.
func (r *Registry) Entries() []xstream.ExtensionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]xstream.ExtensionEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

func conceptEntry() xstream.ExtensionEntry {
	return xstream.ExtensionEntry{Name: ConceptName, Prefix: ConceptPrefix, URI: ConceptURI, Validator: conceptValidator}
}

func orgEntry() xstream.ExtensionEntry {
	return xstream.ExtensionEntry{Name: OrgName, Prefix: OrgPrefix, URI: OrgURI, Validator: orgValidator}
}

func timeEntry() xstream.ExtensionEntry {
	return xstream.ExtensionEntry{Name: TimeName, Prefix: TimePrefix, URI: TimeURI, Validator: timeValidator}
}

// Standard returns a fresh registry seeded with the three extensions
// defined by the standard: Concept, Organizational, and Time.
func Standard() *Registry {
	r := NewRegistry()
	r.Register(conceptEntry())
	r.Register(orgEntry())
	r.Register(timeEntry())
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide standard registry, created once on
// first use. Callers that need isolation (tests, alternate extension
// sets) should construct their own Registry via NewRegistry or Standard
// instead of mutating this one.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = Standard()
	})
	return defaultRegistry
}

var _ xstream.ExtensionLookup = (*Registry)(nil)
