package chat

import (
	"net"
	"sort"

	"github.com/opd-ai/peerchat/peer"
)

// eventKind orders the events of one loop iteration: console first, then the
// listener, then peers.
type eventKind int

const (
	eventConsole eventKind = iota
	eventConsoleClosed
	eventAccept
	eventAcceptFailed
	eventPeer
)

func (k eventKind) String() string {
	switch k {
	case eventConsole:
		return "console"
	case eventConsoleClosed:
		return "console-closed"
	case eventAccept:
		return "accept"
	case eventAcceptFailed:
		return "accept-failed"
	case eventPeer:
		return "peer"
	default:
		return "unknown"
	}
}

// event is the result of one blocking call made by a source goroutine.
type event struct {
	kind eventKind
	line string        // eventConsole
	conn net.Conn      // eventAccept
	err  error         // eventConsoleClosed, eventAcceptFailed
	recv peer.Received // eventPeer
}

// orderBatch sorts a batch by source priority, keeping arrival order within a
// source.
func orderBatch(batch []event) {
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].kind < batch[j].kind
	})
}
