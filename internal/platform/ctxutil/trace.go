package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies one API request across logs, spans and responses.
type TraceData struct {
	TraceID   string
	RequestID string
	// Sampled is true when the trace id came from a recorded otel span.
	Sampled bool
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// TraceFields returns logger key/values for the request trace, or nil.
func TraceFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	return []interface{}{"trace_id", td.TraceID, "request_id", td.RequestID}
}
