package game

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages resolver registration and lookup by command name.
type Registry struct {
	resolvers map[string]Resolver
	mu        sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		resolvers: make(map[string]Resolver),
	}
}

// Register adds a resolver to the registry, replacing any resolver already
// registered under the same command.
func (r *Registry) Register(g Resolver) error {
	if g == nil {
		return fmt.Errorf("cannot register nil resolver")
	}
	if g.Command() == "" {
		return fmt.Errorf("resolver command cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[g.Command()] = g
	return nil
}

// Get retrieves a resolver by its command.
func (r *Registry) Get(command string) (Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.resolvers[command]
	return g, ok
}

// List returns all registered resolvers sorted by command.
func (r *Registry) List() []Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolvers := make([]Resolver, 0, len(r.resolvers))
	for _, g := range r.resolvers {
		resolvers = append(resolvers, g)
	}
	sort.Slice(resolvers, func(i, j int) bool {
		return resolvers[i].Command() < resolvers[j].Command()
	})
	return resolvers
}

// Commands returns all registered commands.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.resolvers))
	for cmd := range r.resolvers {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

// Count returns the number of registered resolvers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resolvers)
}
