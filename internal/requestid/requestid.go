// Package requestid carries the id of the inbound request through contexts,
// so collaborator calls, published messages and log records can be joined up.
package requestid

import "context"

// Header is where the id travels over HTTP, inbound and outbound.
const Header = "X-Request-ID"

type ctxKey struct{}

func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id, or "" outside a request.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
