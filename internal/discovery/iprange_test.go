package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTarget(t *testing.T) {
	testCases := []struct {
		name      string
		target    string
		wantCount int
		wantFirst string
		wantLast  string
		expectErr bool
	}{
		{
			name:      "single address",
			target:    "10.0.0.5",
			wantCount: 1,
			wantFirst: "10.0.0.5",
			wantLast:  "10.0.0.5",
		},
		{
			name:      "cidr /29 skips network and broadcast",
			target:    "192.168.1.8/29",
			wantCount: 6,
			wantFirst: "192.168.1.9",
			wantLast:  "192.168.1.14",
		},
		{
			name:      "cidr /24",
			target:    "192.168.1.0/24",
			wantCount: 254,
			wantFirst: "192.168.1.1",
			wantLast:  "192.168.1.254",
		},
		{
			name:      "wide cidr clamped to /24",
			target:    "10.1.0.0/16",
			wantCount: 254,
			wantFirst: "10.1.0.1",
			wantLast:  "10.1.0.254",
		},
		{
			name:      "full range",
			target:    "10.0.0.10-10.0.0.13",
			wantCount: 4,
			wantFirst: "10.0.0.10",
			wantLast:  "10.0.0.13",
		},
		{
			name:      "short range over last octet",
			target:    "192.168.1.100-110",
			wantCount: 11,
			wantFirst: "192.168.1.100",
			wantLast:  "192.168.1.110",
		},
		{
			name:      "oversized range truncated",
			target:    "10.0.0.0-10.0.4.0",
			wantCount: 256,
			wantFirst: "10.0.0.0",
			wantLast:  "10.0.0.255",
		},
		{
			name:      "range crossing an octet boundary",
			target:    "10.0.0.250-10.0.1.5",
			wantCount: 12,
			wantFirst: "10.0.0.250",
			wantLast:  "10.0.1.5",
		},
		{name: "garbage", target: "not-an-ip", expectErr: true},
		{name: "empty", target: "  ", expectErr: true},
		{name: "backwards range", target: "10.0.0.50-10.0.0.10", expectErr: true},
		{name: "ipv6 rejected", target: "fe80::1", expectErr: true},
		{name: "bad cidr", target: "10.0.0.0/99", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ips, err := ExpandTarget(tc.target)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, ips, tc.wantCount)
			assert.Equal(t, tc.wantFirst, ips[0])
			assert.Equal(t, tc.wantLast, ips[len(ips)-1])
		})
	}
}
