package bridge

import "github.com/questline/relay/src/hub"

// Mirror defines the lifecycle of an out-of-process presence mirror.
// Implementations copy userId → channelId into an external store so status
// readers outside the relay can see presence without touching the hub.
type Mirror interface {
	hub.PresenceMirror

	// Start connects to the store and resets any state left by a previous run.
	Start() error

	// Stop drains pending writes and closes the connection.
	Stop() error

	// Available reports whether the mirror is connected and operational.
	Available() bool
}
