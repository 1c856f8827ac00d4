package netutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemResolverLocalhost(t *testing.T) {
	r := NewSystemResolver()
	addrs, err := r.LookupHost(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1"}, addrs)

	_, err = r.LookupHost(context.Background(), "host.invalid")
	assert.Error(t, err)
}

func TestStaticResolver(t *testing.T) {
	r := &StaticResolver{
		Hosts: map[string][]string{"srvr1.example.com": {"10.0.0.1"}},
		Addrs: map[string]string{"10.0.0.1": "srvr1.example.com"},
	}
	ctx := context.Background()

	addrs, err := r.LookupHost(ctx, "srvr1.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, addrs)

	name, err := r.LookupAddr(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "srvr1.example.com", name)

	_, err = r.LookupAddr(ctx, "10.0.0.9")
	assert.EqualError(t, err, "no name found for 10.0.0.9")
}
