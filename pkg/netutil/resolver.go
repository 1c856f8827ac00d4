package netutil

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"
)

// Resolver answers forward and reverse DNS questions from the host running emtools.
type Resolver interface {
	// LookupHost returns the addresses of name.
	LookupHost(ctx context.Context, name string) ([]string, error)
	// LookupAddr returns the primary name of addr, without the trailing dot.
	LookupAddr(ctx context.Context, addr string) (string, error)
}

// SystemResolver uses the resolver configured on the local host.
type SystemResolver struct {
	r *net.Resolver
}

var _ Resolver = &SystemResolver{}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{r: net.DefaultResolver}
}

func (s *SystemResolver) LookupHost(ctx context.Context, name string) ([]string, error) {
	addrs, err := s.r.LookupHost(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", name)
	}
	if len(addrs) == 0 {
		return nil, errors.Errorf("no address found for %s", name)
	}
	return addrs, nil
}

func (s *SystemResolver) LookupAddr(ctx context.Context, addr string) (string, error) {
	names, err := s.r.LookupAddr(ctx, addr)
	if err != nil {
		return "", errors.Wrapf(err, "failed to reverse resolve %s", addr)
	}
	if len(names) == 0 {
		return "", errors.Errorf("no name found for %s", addr)
	}
	return strings.TrimSuffix(names[0], "."), nil
}

// StaticResolver answers from fixed tables. It backs tests and dry runs.
type StaticResolver struct {
	Hosts map[string][]string
	Addrs map[string]string
}

var _ Resolver = &StaticResolver{}

func (s *StaticResolver) LookupHost(_ context.Context, name string) ([]string, error) {
	addrs, ok := s.Hosts[name]
	if !ok || len(addrs) == 0 {
		return nil, errors.Errorf("no address found for %s", name)
	}
	return addrs, nil
}

func (s *StaticResolver) LookupAddr(_ context.Context, addr string) (string, error) {
	name, ok := s.Addrs[addr]
	if !ok {
		return "", errors.Errorf("no name found for %s", addr)
	}
	return name, nil
}
