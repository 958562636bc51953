package core

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// addrInUseErrnos lists the errno values meaning the address is taken.
// Platform files may extend it.
var addrInUseErrnos = []error{syscall.EADDRINUSE}

func isAddrInUse(err error) bool {
	for _, target := range addrInUseErrnos {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ListenTCP binds host on the first free port in [startPort, startPort+attempts).
// Only address-in-use failures move on to the next port; any other error is returned.
func ListenTCP(host string, startPort, attempts int) (net.Listener, int, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for port := startPort; port < startPort+attempts && port <= 65535; port++ {
		listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return listener, port, nil
		}
		if !isAddrInUse(err) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no available port in %d-%d: %w", startPort, startPort+attempts-1, lastErr)
}
