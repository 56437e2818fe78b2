package middleware

import (
	"strings"

	"capes/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// untracedPrefixes are polled or static paths that would only add noise.
var untracedPrefixes = []string{"/health", "/metrics", "/static", "/favicon"}

func skipTracing(path string) bool {
	for _, p := range untracedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// TracingMiddleware starts a server span per page or API request, named by the
// matched route template (e.g. "GET /events/:id") so detail pages share a name.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipTracing(c.Path()) {
			return c.Next()
		}

		carrier := propagation.HeaderCarrier(c.GetReqHeaders())
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.Bool("capes.api", strings.HasPrefix(c.Path(), "/api/")),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		// The route is only known once the router has matched.
		span.SetName(c.Method() + " " + c.Route().Path)
		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if pid, ok := c.Locals("profileID").(string); ok && pid != "" {
			span.SetAttributes(attribute.String("profile.id", pid))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}
