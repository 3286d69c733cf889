//go:build unix

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl lets a restarted instance rebind its port while old
// connections sit in TIME_WAIT.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
