package enhance

import "context"

type sessionIDKey struct{}
type requestIDKey struct{}
type runIDSinkKey struct{}

// WithSessionID tags the attempt with the editing session it belongs to.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// WithRequestID tags the attempt with the inbound request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithRunIDSink asks the service to store the ID of the recorded run in sink.
func WithRunIDSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, runIDSinkKey{}, sink)
}

func sessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func runIDSinkFromContext(ctx context.Context) *string {
	sink, _ := ctx.Value(runIDSinkKey{}).(*string)
	return sink
}
