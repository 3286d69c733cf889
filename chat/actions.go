package chat

import (
	"net"

	"github.com/opd-ai/peerchat/registry"
	"github.com/opd-ai/peerchat/transport"
)

// actions runs console commands against the node. Its methods are only called
// from the loop goroutine.
type actions struct {
	n *Node
}

func (a actions) LocalIP() (net.IP, error) { return a.n.localIP() }

func (a actions) ListenPort() int {
	if a.n.listener == nil {
		return a.n.cfg.Port
	}
	return transport.ListenPort(a.n.listener)
}

func (a actions) Connect(host string, port int) (int, error) {
	return a.n.handler.Connect(a.n.runCtx, host, port)
}

func (a actions) List() []registry.Entry { return a.n.handler.List() }

func (a actions) Terminate(id int) error { return a.n.handler.Terminate(id) }

func (a actions) Send(id int, msg []byte) error { return a.n.handler.SendTo(id, msg) }

// Exit closes every connection and the listener before the farewell line.
func (a actions) Exit() { a.n.shutdown() }
