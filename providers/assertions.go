package providers

import (
	"github.com/questline/relay/src/bridge"
	"github.com/questline/relay/src/hub"
	"github.com/questline/relay/src/types"
)

// Compile-time interface assertions.
var (
	_ types.Conn    = (*fasthttpConn)(nil)
	_ hub.Socket    = (*hub.Client)(nil)
	_ bridge.Mirror = (*bridge.RedisPresence)(nil)
)
