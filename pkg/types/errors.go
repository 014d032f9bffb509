package types

import "errors"

// Gateway lifecycle errors.
var (
	ErrGatewayNotStarted = errors.New("gateway is not started")
	ErrGatewayStarted    = errors.New("gateway is already started")
)

// History errors.
var ErrHistoryClosed = errors.New("history store is closed")
