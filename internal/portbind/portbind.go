// Package portbind starts listeners that step past ports already in use.
package portbind

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxPort is the highest TCP port.
const MaxPort = 65535

var (
	// ErrBindFailed wraps a bind error that is not an address conflict.
	ErrBindFailed = errors.New("bind failed")
	// ErrNoFreePort is returned when every attempted port was in use.
	ErrNoFreePort = errors.New("no free port")
)

// Attempt describes one bind attempt. Err is nil on success.
type Attempt struct {
	Number int
	Port   int
	Err    error
}

// InUse reports whether the attempt failed because the port was taken.
func (a Attempt) InUse() bool {
	return a.Err != nil && IsAddrInUse(a.Err)
}

// IsAddrInUse reports whether err is an address-already-in-use bind failure.
func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, errAddrInUse)
}

// Binder binds TCP listeners starting from a preferred port.
type Binder struct {
	// Host is the interface to bind; empty means all interfaces.
	Host string
	// MaxAttempts bounds the number of consecutive ports tried.
	MaxAttempts int
	// OnAttempt, if set, is called after every attempt.
	OnAttempt func(Attempt)

	log    logrus.FieldLogger
	listen func(ctx context.Context, network, addr string) (net.Listener, error)
}

// New creates a Binder.
func New(host string, maxAttempts int, log logrus.FieldLogger) *Binder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var lc net.ListenConfig
	return &Binder{
		Host:        host,
		MaxAttempts: maxAttempts,
		log:         log,
		listen:      lc.Listen,
	}
}

// Listen binds port, moving to port+1 while the address is in use. It stops
// at MaxAttempts ports or MaxPort, and never tries a port below port. Any
// other bind error ends the search immediately.
func (b *Binder) Listen(ctx context.Context, port int) (net.Listener, error) {
	if port < 0 || port > MaxPort {
		return nil, fmt.Errorf("%w: invalid port %d", ErrBindFailed, port)
	}
	limit := b.MaxAttempts
	if limit < 1 {
		limit = 1
	}

	tried := 0
	for p := port; p <= MaxPort && tried < limit; p++ {
		tried++
		addr := net.JoinHostPort(b.Host, strconv.Itoa(p))
		ln, err := b.listen(ctx, "tcp", addr)

		attempt := Attempt{Number: tried, Port: p, Err: err}
		if b.OnAttempt != nil {
			b.OnAttempt(attempt)
		}
		entry := b.log.WithFields(logrus.Fields{"port": p, "attempt": tried})

		if err == nil {
			entry.Debug("bind succeeded")
			return ln, nil
		}
		if !attempt.InUse() {
			entry.WithError(err).Error("bind failed")
			return nil, fmt.Errorf("%w: port %d: %w", ErrBindFailed, p, err)
		}
		entry.Warnf("Port %d is already in use. Trying port %d...", p, p+1)
	}

	return nil, fmt.Errorf("%w: %d ports tried starting at %d", ErrNoFreePort, tried, port)
}

// Server is an HTTP server running on a listener obtained from Listen.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Start binds with Listen and serves handler in the background until
// Shutdown is called.
func (b *Binder) Start(ctx context.Context, handler http.Handler, port int) (*Server, error) {
	ln, err := b.Listen(ctx, port)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		ln:   ln,
		done: make(chan error, 1),
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
		close(s.done)
	}()
	return s, nil
}

// Port returns the bound port.
func (s *Server) Port() int {
	if addr, ok := s.ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Done yields the serve error (nil after a clean shutdown) once serving stops.
func (s *Server) Done() <-chan error {
	return s.done
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
