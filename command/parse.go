package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/peerchat/limits"
)

// Kind identifies a console command.
type Kind int

const (
	Help Kind = iota + 1
	MyIP
	MyPort
	Connect
	List
	Terminate
	Send
	Exit
)

var kinds = map[string]Kind{
	"help":      Help,
	"myip":      MyIP,
	"myport":    MyPort,
	"connect":   Connect,
	"list":      List,
	"terminate": Terminate,
	"send":      Send,
	"exit":      Exit,
}

var usages = map[Kind]string{
	Connect:   "connect <destination> <port no>",
	Terminate: "terminate <connection id>",
	Send:      "send <connection id> <message>",
}

// String returns the command word.
func (k Kind) String() string {
	for name, kind := range kinds {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Usage returns the argument synopsis for k, or the bare word when k takes no
// arguments.
func Usage(k Kind) string {
	if u, ok := usages[k]; ok {
		return u
	}
	return k.String()
}

var (
	// ErrEmpty is returned for a blank line.
	ErrEmpty = errors.New("empty command")

	// ErrUnknownCommand is returned when the first token names no command.
	ErrUnknownCommand = errors.New("invalid command")

	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing argument")

	// ErrInvalidArgument is returned when an argument does not parse.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ParseError describes a bad argument to a known command.
type ParseError struct {
	Kind  Kind
	Arg   string // argument name as shown in the usage line
	Value string // offending text, empty when missing
	Err   error  // ErrMissingArgument or ErrInvalidArgument
	Cause error  // optional detail, e.g. limits.ErrInvalidPort
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %v %s", e.Kind, e.Err, e.Arg)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Command is one parsed console line.
type Command struct {
	Kind    Kind
	Host    string // connect
	Port    int    // connect
	ID      int    // terminate, send
	Message string // send; the rest of the line, inner spaces kept
}

// Parse splits a console line into a Command. Tokens are separated by spaces
// or tabs and the command word is case-sensitive. Arguments beyond those a
// command takes are ignored, except for send, whose message is everything
// after the id.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")

	word, rest := nextToken(line)
	if word == "" {
		return Command{}, ErrEmpty
	}
	kind, ok := kinds[word]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, word)
	}

	cmd := Command{Kind: kind}
	switch kind {
	case Connect:
		host, rest := nextToken(rest)
		if host == "" {
			return Command{}, missing(kind, "<destination>")
		}
		portText, _ := nextToken(rest)
		port, err := parsePort(kind, portText)
		if err != nil {
			return Command{}, err
		}
		cmd.Host, cmd.Port = host, port

	case Terminate:
		idText, _ := nextToken(rest)
		id, err := parseID(kind, idText)
		if err != nil {
			return Command{}, err
		}
		cmd.ID = id

	case Send:
		idText, rest := nextToken(rest)
		id, err := parseID(kind, idText)
		if err != nil {
			return Command{}, err
		}
		msg := strings.TrimLeft(rest, " \t")
		if msg == "" {
			return Command{}, missing(kind, "<message>")
		}
		cmd.ID, cmd.Message = id, msg
	}
	return cmd, nil
}

// nextToken returns the first space- or tab-delimited token of s and the text
// after the delimiter that ended it.
func nextToken(s string) (token, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func missing(kind Kind, arg string) error {
	return &ParseError{Kind: kind, Arg: arg, Err: ErrMissingArgument}
}

func parseID(kind Kind, text string) (int, error) {
	if text == "" {
		return 0, missing(kind, "<connection id>")
	}
	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ParseError{Kind: kind, Arg: "<connection id>", Value: text, Err: ErrInvalidArgument}
	}
	return id, nil
}

func parsePort(kind Kind, text string) (int, error) {
	if text == "" {
		return 0, missing(kind, "<port no>")
	}
	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ParseError{Kind: kind, Arg: "<port no>", Value: text, Err: ErrInvalidArgument}
	}
	if err := limits.ValidatePort(port); err != nil {
		return 0, &ParseError{Kind: kind, Arg: "<port no>", Value: text, Err: ErrInvalidArgument, Cause: err}
	}
	return port, nil
}
