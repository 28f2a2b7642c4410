package httpapi

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// Listen binds host:port, moving to the next port when one is taken, for up
// to attempts ports. Port 0 asks the kernel for any free port.
func Listen(host string, port, attempts int) (net.Listener, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if port == 0 {
		return net.Listen("tcp", net.JoinHostPort(host, "0"))
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		p := port + i
		if p > 65535 {
			break
		}
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			if i > 0 {
				logger().Warn().Int("requested", port).Int("port", p).Msg("port busy; using next free port")
			}
			return l, nil
		}
		lastErr = err
		if !isAddrInUse(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free port in %d..%d: %w", port, port+attempts-1, lastErr)
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
