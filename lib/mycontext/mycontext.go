package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the trace context this (used by mylog)
type CtxTraceContext struct{}

// ContextFromEvent derives the context in which a single inbound chat event is handled.
func ContextFromEvent(parent context.Context, eventID int, traceUID string) context.Context {
	return context.WithValue(parent, CtxTraceContext{}, fmt.Sprintf("event/%d/%s", eventID, traceUID))
}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	var trace string

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	traceContext := r.Header.Get("X-Cloud-Trace-Context")
	traceParts := strings.Split(traceContext, "/")

	if len(traceParts) > 0 && len(traceParts[0]) > 0 {
		trace = fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
	}

	return context.WithValue(r.Context(), CtxTraceContext{}, trace)
}

// TraceFromContext returns the trace set by one of the constructors above, or "".
func TraceFromContext(c context.Context) string {
	if c == nil {
		return ""
	}
	trace, _ := c.Value(CtxTraceContext{}).(string)
	return trace
}
