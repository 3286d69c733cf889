package command

import (
	"errors"
	"net"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/peerchat/console"
	"github.com/opd-ai/peerchat/registry"
	"github.com/sirupsen/logrus"
)

// Actions is what the interpreter drives. The event loop implements it.
type Actions interface {
	LocalIP() (net.IP, error)
	ListenPort() int
	Connect(host string, port int) (int, error)
	List() []registry.Entry
	Terminate(id int) error
	Send(id int, msg []byte) error
	Exit()
}

// Interpreter turns console lines into actions and reports the outcome.
type Interpreter struct {
	actions Actions
	out     *console.Printer
}

// NewInterpreter creates an Interpreter.
func NewInterpreter(actions Actions, out *console.Printer) *Interpreter {
	return &Interpreter{actions: actions, out: out}
}

// Execute parses and runs one console line. It returns true after exit.
// No input makes it fail: bad lines are reported and ignored.
func (in *Interpreter) Execute(line string) bool {
	cmd, err := Parse(line)
	if err != nil {
		in.reportParseError(err)
		return false
	}

	logrus.WithFields(logrus.Fields{
		"function": "Interpreter.Execute",
		"command":  cmd.Kind.String(),
	}).Debug("Executing command")

	return in.Run(cmd)
}

func (in *Interpreter) reportParseError(err error) {
	var perr *ParseError
	switch {
	case errors.Is(err, ErrEmpty):
	case errors.As(err, &perr):
		in.out.Printf("%s", sentence(err))
		in.out.Printf("Usage: %s", Usage(perr.Kind))
	default:
		in.out.Printf("Invalid command")
	}
}

// Run executes a parsed command. It returns true after exit.
func (in *Interpreter) Run(cmd Command) bool {
	switch cmd.Kind {
	case Help:
		in.out.Menu()

	case MyIP:
		ip, err := in.actions.LocalIP()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Interpreter.Run",
				"error":    err.Error(),
			}).Warn("Local IPv4 lookup failed")
			in.out.Printf("No non-loopback IPv4 address found.")
			return false
		}
		in.out.Printf("IP Address of this app: %s", ip)

	case MyPort:
		in.out.Printf("Listening port of this app: %d", in.actions.ListenPort())

	case Connect:
		if _, err := in.actions.Connect(cmd.Host, cmd.Port); err != nil {
			if errors.Is(err, registry.ErrCapacityExceeded) {
				in.out.Printf("Maximum clients reached. Connection rejected.")
				return false
			}
			in.out.Printf("%s", sentence(err))
			return false
		}
		in.out.Printf("Successfully connected. Ready for data transmission")

	case List:
		in.out.Table(in.actions.List())

	case Terminate:
		if err := in.actions.Terminate(cmd.ID); err != nil {
			in.reportIDError(err)
			return false
		}
		in.out.Printf("Terminated peer with ID %d successfully", cmd.ID)

	case Send:
		if err := in.actions.Send(cmd.ID, []byte(cmd.Message)); err != nil {
			in.reportIDError(err)
			return false
		}
		in.out.Printf("Sent message successfully")

	case Exit:
		in.out.Printf("Exiting...")
		in.actions.Exit()
		in.out.Printf("DONE, GOODBYE!!!")
		return true

	default:
		in.out.Printf("Invalid command")
	}
	return false
}

func (in *Interpreter) reportIDError(err error) {
	if errors.Is(err, registry.ErrInvalidID) {
		in.out.Printf("Invalid connection ID.")
		return
	}
	in.out.Printf("%s", sentence(err))
}

// sentence capitalizes an error message for the console.
func sentence(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + strings.TrimSpace(msg[size:])
}
