package transport

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstIPv4(t *testing.T) {
	lo := net.Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}
	down := net.Interface{Name: "eth1", Flags: 0}
	v6only := net.Interface{Name: "eth2", Flags: net.FlagUp}
	eth := net.Interface{Name: "eth0", Flags: net.FlagUp}

	addrs := map[string][]net.Addr{
		"lo":   {&net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}},
		"eth1": {&net.IPNet{IP: net.IPv4(10, 9, 9, 9), Mask: net.CIDRMask(24, 32)}},
		"eth2": {&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}},
		"eth0": {&net.IPNet{IP: net.IPv4(192, 168, 1, 20), Mask: net.CIDRMask(24, 32)}},
	}
	lookup := func(iface net.Interface) ([]net.Addr, error) {
		return addrs[iface.Name], nil
	}

	ip, err := firstIPv4([]net.Interface{lo, down, v6only, eth}, lookup)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", ip.String())
}

func TestFirstIPv4None(t *testing.T) {
	lo := net.Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}
	broken := net.Interface{Name: "eth0", Flags: net.FlagUp}

	lookup := func(iface net.Interface) ([]net.Addr, error) {
		if iface.Name == "eth0" {
			return nil, errors.New("no addrs")
		}
		return []net.Addr{&net.IPAddr{IP: net.IPv4(127, 0, 0, 1)}}, nil
	}

	_, err := firstIPv4([]net.Interface{lo, broken}, lookup)
	assert.ErrorIs(t, err, ErrNoIPv4)
}
