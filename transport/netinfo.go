package transport

import (
	"errors"
	"net"
)

// ErrNoIPv4 indicates no interface carries a non-loopback IPv4 address.
var ErrNoIPv4 = errors.New("no non-loopback IPv4 address")

// LocalIPv4 returns the first non-loopback IPv4 address of an interface that
// is up.
func LocalIPv4() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, newNetError("interfaces", "", err)
	}
	return firstIPv4(ifaces, func(iface net.Interface) ([]net.Addr, error) {
		return iface.Addrs()
	})
}

func firstIPv4(ifaces []net.Interface, addrs func(net.Interface) ([]net.Addr, error)) (net.IP, error) {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		list, err := addrs(iface)
		if err != nil {
			continue
		}
		for _, addr := range list {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4, nil
			}
		}
	}
	return nil, ErrNoIPv4
}
