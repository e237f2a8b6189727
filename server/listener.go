// listener.go: the TCP accept loop.
//
// Grounded on agilira/balios's concurrency discipline — short critical
// sections, no goroutine ever blocks while holding memline.Store's mutex —
// generalized from "many callers share one cache" to "many accepted
// connections share one cache", since spec.md never pins down connection
// handling itself (it names it an external collaborator).
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/agilira/memline"
)

// Options configures a Listener's per-connection behavior.
type Options struct {
	// ReadTimeout, if nonzero, is applied as a read deadline at the start
	// of every command a Session handles, so a command line and its data
	// block must both arrive within it.
	ReadTimeout time.Duration

	// WriteTimeout, if nonzero, is applied as a deadline before every
	// write a Session performs.
	WriteTimeout time.Duration
}

// Listener accepts connections and serves each with its own Session,
// all sharing one *memline.Store and memline.Clock.
type Listener struct {
	ln     net.Listener
	store  *memline.Store
	clock  memline.Clock
	logger memline.Logger

	optsMu sync.RWMutex
	opts   Options

	wg sync.WaitGroup
}

// NewListener wraps ln, dispatching accepted connections against store
// and clock. logger may be nil, in which case memline.NoOpLogger is used.
func NewListener(ln net.Listener, store *memline.Store, clock memline.Clock, logger memline.Logger, opts Options) *Listener {
	if logger == nil {
		logger = memline.NoOpLogger{}
	}
	return &Listener{ln: ln, store: store, clock: clock, logger: logger, opts: opts}
}

// SetOptions replaces the Options applied to every connection accepted
// from this point on. In-flight Sessions keep whatever deadlines they
// were started with — config.HotReloader's reload callback calls this to
// apply read/write timeout changes without restarting the listener.
func (l *Listener) SetOptions(opts Options) {
	l.optsMu.Lock()
	defer l.optsMu.Unlock()
	l.opts = opts
}

func (l *Listener) currentOptions() Options {
	l.optsMu.RLock()
	defer l.optsMu.RUnlock()
	return l.opts
}

// Serve accepts connections until ctx is canceled or Accept fails. Each
// connection is served by its own goroutine running a Session. After ctx
// is canceled, Serve closes the listener, waits for all in-flight sessions
// to drain, and returns nil; any other Accept error is returned at once,
// without waiting for sessions.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				l.wg.Wait()
				return nil
			default:
				return err
			}
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			sess := NewSession(conn, l.store, l.clock, l.logger, l.currentOptions())
			sess.Run()
		}()
	}
}

// Addr returns the address the underlying net.Listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
