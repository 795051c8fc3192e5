// Package discovery resolves logical service names to live base URLs.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNoInstances = errors.New("no registered instances")

// Resolver returns the base URL of one live instance of a service.
type Resolver interface {
	Resolve(ctx context.Context, serviceName string) (string, error)
}

// Instance is one registered process of a service.
type Instance struct {
	ID          string `json:"id"`
	ServiceName string `json:"service_name"`
	URI         string `json:"uri"`
}

// StaticResolver serves fixed addresses, keyed by service name.
type StaticResolver struct {
	endpoints map[string]string
}

func NewStaticResolver(endpoints map[string]string) *StaticResolver {
	clean := make(map[string]string, len(endpoints))
	for name, uri := range endpoints {
		if uri = strings.TrimRight(strings.TrimSpace(uri), "/"); uri != "" {
			clean[name] = uri
		}
	}
	return &StaticResolver{endpoints: clean}
}

func (r *StaticResolver) Resolve(_ context.Context, serviceName string) (string, error) {
	uri, ok := r.endpoints[serviceName]
	if !ok {
		return "", fmt.Errorf("%s: %w", serviceName, ErrNoInstances)
	}
	return uri, nil
}
