// Package console renders everything the operator sees: the menu, the prompt,
// received message blocks, the connection table and status lines.
//
// Diagnostics never go through this package; they are logged with logrus.
package console

import (
	"fmt"
	"io"

	"github.com/opd-ai/peerchat/registry"
)

const (
	banner  = "*****************************************"
	divider = "-----------------------------------------"

	// Prompt is printed after every handled console line.
	Prompt = "Enter your command:"
)

var menu = []string{
	"***************************************CHAT APP************************************",
	"Use the command below:",
	"help                              : display this menu",
	"myip                              : display IP address of this app",
	"myport                            : display listening port of this app",
	"connect <destination> <port no>   : connect to the app of another computer",
	"list                              : list all the connections of this app",
	"terminate <connection id>         : terminate a connection",
	"send <connection id> <message>    : send a message to a connection",
	"exit                              : close all connections & terminate this app",
	"**********************************************************************************",
}

// Printer writes operator output to w. Write errors are dropped: there is
// nowhere else to report them.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Printf writes a formatted line. A trailing newline is added.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Menu writes the command menu.
func (p *Printer) Menu() {
	for _, line := range menu {
		fmt.Fprintln(p.w, line)
	}
}

// Prompt writes the command prompt.
func (p *Printer) Prompt() {
	fmt.Fprintln(p.w, Prompt)
}

// Message writes a received message block. content is written verbatim,
// control characters included.
func (p *Printer) Message(ip string, port int, content []byte) {
	fmt.Fprintln(p.w, banner)
	fmt.Fprintf(p.w, "* Message received from: %s\n", ip)
	fmt.Fprintf(p.w, "* Sender's port: %d\n", port)
	fmt.Fprint(p.w, "* Content: ")
	p.w.Write(content)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, banner)
}

// Table writes the connection table. An empty table prints the header only.
func (p *Printer) Table(entries []registry.Entry) {
	fmt.Fprintln(p.w, banner)
	fmt.Fprintln(p.w, "ID |        IP Address        | Port No.")
	if len(entries) == 0 {
		fmt.Fprintln(p.w, banner)
		return
	}
	fmt.Fprintln(p.w, divider)
	for _, e := range entries {
		fmt.Fprintf(p.w, "%d  |      %s      |  %d\n", e.ID, e.IP, e.Port)
	}
	fmt.Fprintln(p.w, banner)
}
