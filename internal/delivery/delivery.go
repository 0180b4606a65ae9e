// Package delivery holds the transports that expose the service to the outside world.
package delivery

import "context"

// Delivery is a long-running transport started by the fx entrypoints.
type Delivery interface {
	Serve(ctx context.Context) error
}
