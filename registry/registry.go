package registry

import (
	"errors"
	"fmt"
	"net"

	"github.com/opd-ai/peerchat/limits"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCapacityExceeded is returned by Add when the registry is full. The
	// registry did not take ownership; the caller must close the socket.
	ErrCapacityExceeded = errors.New("maximum connections reached")

	// ErrInvalidID is returned for ids outside [0, Len()).
	ErrInvalidID = errors.New("invalid connection ID")

	// ErrDuplicateSocket is returned by Add when the socket is already
	// registered. Do not close the socket after this error; the registry
	// still owns it.
	ErrDuplicateSocket = errors.New("socket already registered")
)

// Entry is one row of List.
type Entry struct {
	ID   int
	IP   string
	Port int
}

// Registry is the bounded table of live peer connections.
//
// Ids are slot indexes. Remove moves the last entry into the freed slot, so an
// id is only valid until the next removal of an entry at or below it.
//
// A Registry is not safe for concurrent use; it belongs to the event loop.
type Registry struct {
	conns    []*Connection
	capacity int
}

// New creates an empty registry. A non-positive capacity selects
// limits.DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = limits.DefaultCapacity
	}
	return &Registry{
		conns:    make([]*Connection, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Cap returns the maximum number of connections.
func (r *Registry) Cap() int {
	return r.capacity
}

// Add appends c and returns its id.
func (r *Registry) Add(c *Connection) (int, error) {
	if _, ok := r.FindBySocket(c.Socket()); ok {
		return -1, ErrDuplicateSocket
	}
	if len(r.conns) >= r.capacity {
		return -1, fmt.Errorf("%w: %d/%d", ErrCapacityExceeded, len(r.conns), r.capacity)
	}
	r.conns = append(r.conns, c)
	id := len(r.conns) - 1

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Add",
		"id":       id,
		"tag":      c.Tag().String(),
		"peer":     c.Addr().String(),
		"size":     len(r.conns),
	}).Debug("Connection registered")

	return id, nil
}

// Get returns the connection at id.
func (r *Registry) Get(id int) (*Connection, error) {
	if id < 0 || id >= len(r.conns) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return r.conns[id], nil
}

// Remove closes the connection at id and compacts the table by moving the
// last entry into its slot. Every remaining connection is then told
// "Connection <id> has been terminated." on a best-effort basis.
func (r *Registry) Remove(id int) error {
	removed, err := r.Get(id)
	if err != nil {
		return err
	}

	if err := removed.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.Remove",
			"id":       id,
			"tag":      removed.Tag().String(),
			"error":    err.Error(),
		}).Debug("Socket close reported an error")
	}

	last := len(r.conns) - 1
	if id != last {
		r.conns[id] = r.conns[last]
	}
	r.conns[last] = nil
	r.conns = r.conns[:last]

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Remove",
		"id":       id,
		"tag":      removed.Tag().String(),
		"peer":     removed.Addr().String(),
		"size":     len(r.conns),
	}).Info("Connection removed")

	r.broadcast(TerminationNotice(id))
	return nil
}

// broadcast sends msg to every live connection. Failures are not retried.
func (r *Registry) broadcast(msg []byte) {
	for i, c := range r.conns {
		if err := c.Send(msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Registry.broadcast",
				"id":       i,
				"tag":      c.Tag().String(),
				"error":    err.Error(),
			}).Debug("Termination notice not delivered")
		}
	}
}

// FindBySocket returns the current id of the connection owning conn.
func (r *Registry) FindBySocket(conn net.Conn) (int, bool) {
	for i, c := range r.conns {
		if c.Socket() == conn {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether c is still registered.
func (r *Registry) Contains(c *Connection) bool {
	for _, live := range r.conns {
		if live == c {
			return true
		}
	}
	return false
}

// List returns the table in id order.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.conns))
	for i, c := range r.conns {
		entries = append(entries, Entry{ID: i, IP: c.IP(), Port: c.Port()})
	}
	return entries
}

// CloseAll closes every socket without notices and empties the registry.
// It returns the number of connections closed.
func (r *Registry) CloseAll() int {
	n := len(r.conns)
	for i, c := range r.conns {
		c.Close()
		r.conns[i] = nil
	}
	r.conns = r.conns[:0]
	return n
}

// TerminationNotice is the text sent to surviving peers when connection id is
// removed.
func TerminationNotice(id int) []byte {
	return []byte(fmt.Sprintf("Connection %d has been terminated.\n", id))
}
