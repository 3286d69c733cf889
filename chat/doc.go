// Package chat runs a peerchat instance.
//
// A Node owns a TCP listener, a bounded registry of peer connections and the
// operator console. Every blocking call happens on its own goroutine: one
// reads console lines, one accepts, and one per connection receives. Each
// posts its result to a single channel. The event loop goroutine is the only
// one that touches the registry; each iteration it waits for an event, drains
// everything else already pending, and handles the batch in the order console,
// listener, peers.
//
//	n, err := chat.New(cfg, nil)
//	if err != nil {
//		return err
//	}
//	if err := n.Listen(ctx); err != nil {
//		return err
//	}
//	return n.Run(ctx)
package chat
