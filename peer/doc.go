// Package peer implements per-link I/O for a chat instance.
//
// A receive is split in two halves. Receive performs exactly one blocking
// receive call and runs on the link's own goroutine; Deliver applies the
// result on the event loop, which owns the registry. Deliver looks the link
// up again before acting, so a result for a link removed in the meantime is
// dropped.
//
// A zero-byte receive and a receive error both mean the peer is gone: the
// link is removed and the surviving peers are notified. The log records
// whether the cause was a clean close or an error.
//
// Sends are a single write call. A short write is reported, not resent.
package peer
