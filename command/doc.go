// Package command parses and runs operator console lines.
//
// Grammar (tokens separated by spaces or tabs, command word case-sensitive):
//
//	help
//	myip
//	myport
//	connect <destination> <port no>
//	list
//	terminate <connection id>
//	send <connection id> <message...>
//	exit
//
// The send message is the rest of the line after the id, inner spaces kept.
// Missing or unparsable arguments yield a *ParseError wrapping
// ErrMissingArgument or ErrInvalidArgument; the Interpreter reports it with a
// usage line and never fails on bad input.
package command
