package ordering

import "fmt"

const (
	// NewestFirstName is used when a listing does not name a strategy.
	NewestFirstName = "newest-first"
	OldestFirstName = "oldest-first"
)

// Strategy turns links in page discovery order into processing order.
type Strategy interface {
	Name() string
	Order(links []string) []string
}

// NewestFirst is for pages that list the newest article at the top, so the oldest
// discovered link is processed first.
type NewestFirst struct{}

func (NewestFirst) Name() string { return NewestFirstName }

func (NewestFirst) Order(links []string) []string {
	ordered := make([]string, len(links))
	for i, link := range links {
		ordered[len(links)-1-i] = link
	}
	return ordered
}

// OldestFirst keeps discovery order.
type OldestFirst struct{}

func (OldestFirst) Name() string { return OldestFirstName }

func (OldestFirst) Order(links []string) []string {
	ordered := make([]string, len(links))
	copy(ordered, links)
	return ordered
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry with the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	r.Register(NewestFirst{})
	r.Register(OldestFirst{})
	return r
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name; an empty name resolves to newest-first.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if name == "" {
		name = NewestFirstName
	}
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("ordering %s is not registered", name)
}
