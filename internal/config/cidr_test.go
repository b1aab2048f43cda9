package config

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIDRSubnet(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		newbits int
		netnum  int
		want    string
		wantErr bool
	}{
		{name: "first /24 in /16", prefix: "10.0.0.0/16", newbits: 8, netnum: 1, want: "10.0.1.0/24"},
		{name: "second /24 in /16", prefix: "10.0.0.0/16", newbits: 8, netnum: 2, want: "10.0.2.0/24"},
		{name: "zeroth subnet", prefix: "10.0.0.0/16", newbits: 8, netnum: 0, want: "10.0.0.0/24"},
		{name: "non-canonical base", prefix: "172.16.5.9/16", newbits: 8, netnum: 1, want: "172.16.1.0/24"},
		{name: "netnum too large", prefix: "10.0.0.0/16", newbits: 2, netnum: 4, wantErr: true},
		{name: "newbits too large", prefix: "10.0.0.0/28", newbits: 8, netnum: 0, wantErr: true},
		{name: "invalid prefix", prefix: "not-a-cidr", newbits: 8, netnum: 0, wantErr: true},
		{name: "ipv6 rejected", prefix: "fd00::/64", newbits: 8, netnum: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CIDRSubnet(tt.prefix, tt.newbits, tt.netnum)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCIDRHost(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		hostnum int
		want    string
		wantErr bool
	}{
		{name: "first host", prefix: "10.0.1.0/24", hostnum: 1, want: "10.0.1.1"},
		{name: "gateway convention", prefix: "10.0.0.0/16", hostnum: 1, want: "10.0.0.1"},
		{name: "negative counts from end", prefix: "10.0.1.0/24", hostnum: -1, want: "10.0.1.255"},
		{name: "hostnum too large", prefix: "10.0.1.0/30", hostnum: 4, wantErr: true},
		{name: "invalid prefix", prefix: "bogus", hostnum: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CIDRHost(tt.prefix, tt.hostnum)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixInside(t *testing.T) {
	network := netip.MustParsePrefix("10.0.0.0/16")

	assert.True(t, PrefixInside(netip.MustParsePrefix("10.0.1.0/24"), network))
	assert.True(t, PrefixInside(network, network))
	assert.False(t, PrefixInside(netip.MustParsePrefix("10.1.0.0/24"), network))
	// Straddles the upper boundary of the network block.
	assert.False(t, PrefixInside(netip.MustParsePrefix("10.0.0.0/15"), network))
}
