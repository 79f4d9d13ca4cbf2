package hypervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskToCIDRBits(t *testing.T) {
	cases := []struct {
		mask string
		bits int
	}{
		{"255.255.255.0", 24},
		{"255.0.0.0", 8},
		{"255.255.255.255", 32},
		{"0.0.0.0", 0},
	}
	for _, tc := range cases {
		bits, err := MaskToCIDRBits(tc.mask)
		require.NoError(t, err)
		assert.Equal(t, tc.bits, bits, "mask %s", tc.mask)
	}
}

func TestBuildNetworkConfig(t *testing.T) {
	cfg, err := BuildNetworkConfig("192.168.0.100", "192.168.0.1", "255.255.255.255")
	require.NoError(t, err)
	assert.Equal(t, "ip=192.168.0.100/32,gw=192.168.0.1", cfg)
}
