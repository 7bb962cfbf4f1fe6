/*
Package tracing provides lightweight request tracing for debugging.

# Overview

Every HTTP request gets a span; the protocol dispatcher opens child spans per
JSON-RPC method and per tool call. Finished spans are logged through zap by a
buffered collector goroutine. Trace context travels in the X-Trace-ID and
X-Span-ID headers so a host can correlate its own logs.

# Usage

	tracer := tracing.New(logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "tools/call")
	defer tracer.Finish(span)
*/
package tracing
