// Package domain contains core concepts of the relay system.
// This file defines the User identity and its binding to a live connection.
// No runtime, network, or UI logic should be added here.
package domain

// User is a logical identity, distinct from the connection it currently
// rides on. The same user may reconnect under a new ConnectionID.
type User struct {
	ID           string
	Name         string
	ConnectionID string
}
