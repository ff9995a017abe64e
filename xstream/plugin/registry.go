// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Entry is one named stage in a Registry: its human-readable description,
// the Factory that builds it, and an instance id minted at registration
// time so callers can correlate a running stage back to the registry
// entry that produced it across logs and traces.
type Entry struct {
	Name        string
	Description string
	Factory     Factory
	InstanceID  uuid.UUID
}

// Registry is a name-keyed lookup table of stage factories, safe for
// concurrent use. The flow graph resolves every Segment.Plugin name
// against one of these before compiling a Graph.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Register adds or replaces the entry for name, minting a fresh instance
// id. It logs at debug level when an existing entry is overwritten.
func (r *Registry) Register(name, description string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		slog.Debug("plugin registry: overwrite entry", "name", name)
	}
	r.entries[name] = Entry{Name: name, Description: description, Factory: factory, InstanceID: uuid.New()}
}

// Get looks up a stage by name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns every registered stage sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide standard registry, seeded once with the
// built-in stages (see stages.go). Tests and isolated graphs should build
// their own Registry via NewRegistry instead of mutating this one.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		registerStandardStages(defaultReg)
	})
	return defaultReg
}

// LogPlugins writes a human-readable inventory of every registered stage,
// its instance id, and its declared parameters to the default slog logger.
func LogPlugins(r *Registry) {
	entries := r.Entries()
	slog.Info("installed plugins", "count", len(entries))
	for i, e := range entries {
		slog.Info("plugin", "index", i+1, "name", e.Name, "description", e.Description, "instance_id", e.InstanceID)
		for _, a := range e.Factory.Declaration.attributes {
			def := ""
			if a.def != nil {
				def = "has default"
			}
			slog.Info("  attribute", "name", a.name, "description", a.description, "default", def)
		}
		for _, a := range e.Factory.Declaration.artifacts {
			slog.Info("  artifact", "name", a.name, "description", a.description)
		}
		for _, a := range e.Factory.Declaration.streams {
			slog.Info("  stream", "name", a.name, "description", a.description)
		}
		for _, a := range e.Factory.Declaration.sinks {
			slog.Info("  sink", "name", a.name, "description", a.description)
		}
	}
}
