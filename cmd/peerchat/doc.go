// Command peerchat runs one peer of a peer-to-peer TCP chat.
//
// It listens on the given port for other peers and reads operator commands
// from standard input:
//
//	peerchat [options] <port>
//
// Type help at the prompt for the command list. Diagnostics are logged to
// standard error or the file named by -log-file; standard output carries only
// the chat console. Interrupt or terminate signals shut the node down like the
// exit command.
package main
