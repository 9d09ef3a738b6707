package tenancy

import "context"

type ctxKey string

const clientKey ctxKey = "convo.client_id"

// WithClientID stores the client id in context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientKey, clientID)
}

// ClientIDFromContext extracts the client id if present.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(clientKey)
	if val == nil {
		return "", false
	}
	clientID, ok := val.(string)
	return clientID, ok && clientID != ""
}
