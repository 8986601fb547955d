// Package presence reads the online-user registry and publishes
// friendship change notifications. The registry itself is owned by the
// websocket gateway; this service only consumes it.
package presence

import "context"

// Registry is the key-value presence collaborator.
type Registry interface {
	// Online returns the ids of all currently connected users.
	Online(ctx context.Context) ([]string, error)

	// NotifyChange signals the broadcast channel that friendship state
	// changed and online-status lists should be recomputed. Fire and
	// forget: implementations log failures instead of returning them.
	NotifyChange(ctx context.Context)
}
