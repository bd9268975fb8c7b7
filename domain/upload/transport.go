package upload

import "context"

// Transport sends one payload to the upload entry point.
// Errors are *failure.Error values classified at the network boundary.
type Transport interface {
	Send(ctx context.Context, p Payload, folderID string) (Receipt, error)
}
