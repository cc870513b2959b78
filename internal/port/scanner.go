package port

import (
	"fmt"
	"net"
)

const (
	// MinPort and MaxPort bound the valid TCP listen range for the server.
	// Ports below 1024 need root on most systems, which a LAN file server
	// should never run as.
	MinPort = 1024
	MaxPort = 65535

	// autoRangeStart is where the automatic search begins when the
	// operator passes port 0. Starting at the documented default keeps
	// the chosen port predictable on an idle machine.
	autoRangeStart = 5000
	autoRangeEnd   = 5999
)

// Scanner checks whether specific TCP ports are available on the host.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options (e.g., bind address) can be
// added without breaking the API, and so it can be injected as a
// dependency in tests.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable reports whether a TCP port can currently be bound.
//
// It binds to all interfaces (":port" rather than "127.0.0.1:port")
// because the server itself listens on 0.0.0.0, so the check must cover
// the same address space. The probe listener is closed immediately.
func (s *Scanner) IsAvailable(port int) bool {
	if port < MinPort || port > MaxPort {
		return false
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	defer func() { _ = listener.Close() }()
	return true
}

// FindAvailable scans [startPort, endPort] (inclusive) and returns the
// first bindable port. The sequential search keeps the selection
// deterministic on an otherwise idle host.
func (s *Scanner) FindAvailable(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		if s.IsAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", startPort, endPort)
}

// Resolve turns the operator's requested port into the port to listen on.
//
//   - requested == 0: automatic; search the auto range for a free port.
//   - requested out of [MinPort, MaxPort]: error.
//   - requested taken: error naming the port, so the operator sees the
//     conflict before the server half-starts.
func (s *Scanner) Resolve(requested int) (int, error) {
	if requested == 0 {
		return s.FindAvailable(autoRangeStart, autoRangeEnd)
	}
	if requested < MinPort || requested > MaxPort {
		return 0, fmt.Errorf("port %d out of range (%d-%d)", requested, MinPort, MaxPort)
	}
	if !s.IsAvailable(requested) {
		return 0, fmt.Errorf("port %d is already in use", requested)
	}
	return requested, nil
}
