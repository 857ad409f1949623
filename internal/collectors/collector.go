package collectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrFetchFailed wraps every retrieval or decoding failure of a subscription.
var ErrFetchFailed = errors.New("subscription fetch failed")

// Collector retrieves a subscription and returns its share-link lines.
type Collector interface {
	Collect(ctx context.Context, target string, params map[string]interface{}) ([]string, error)
}

type Factory func() Collector

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Collector, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("collector plugin '%s' not found", name)
	}
	return factory(), nil
}

// Names lists the registered collectors.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchFailed wraps err as ErrFetchFailed for target.
func FetchFailed(target string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFetchFailed, target, err)
}
