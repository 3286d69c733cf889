// Package registry holds the bounded table of live peer connections.
//
// Connections are addressed by id, the slot index in the table. Removal
// compacts the table by moving the last entry into the freed slot:
//
//	[A, B, C]  Remove(0)  ->  [C, B]
//
// Ids are therefore not stable peer identifiers. After any removal the
// operator should list the table again before addressing a peer by id. Each
// Connection carries a random tag for log correlation across id changes.
//
// Remove notifies every surviving peer with "Connection <id> has been
// terminated." using the id that was removed. These notices are best effort.
//
// A Registry has a single owner and takes no locks.
package registry
