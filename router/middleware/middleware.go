package middleware

import (
	"strings"

	"github.com/apex/log"
	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router/tokens"
)

// AttachRequestID attaches a unique ID to the incoming HTTP request so that any
// errors that are generated or returned to the client will include this reference
// allowing for an easier time identifying the specific request that failed for
// the user.
//
// If you are using a tool such as Sentry or Bugsnag for error reporting this is
// a great location to also attach this request ID to your error handling logic
// so that you can easily cross-reference the errors.
func AttachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Set("logger", log.WithField("request_id", id))
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// CaptureErrors is global middleware that catches any errors that were attached
// to the request by a handler and renders them to the client in a consistent
// format. Handlers should call CaptureAndAbort rather than writing error
// responses themselves.
func CaptureErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || err.Err == nil || c.Writer.Written() {
			return
		}
		renderError(c, err.Err)
	}
}

// AttachPlanner attaches the planner service to the request context.
func AttachPlanner(s *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("planner", s)
		c.Next()
	}
}

// RequireAuthorization authenticates the request token against the configured
// signing secret and stores the user the token was issued for in the context.
// Requests without a valid token are rejected with a 401 response.
func RequireAuthorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		// The signing secret can be rotated while the process is running, so the
		// token is verified against the current configuration on every request.
		auth := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(auth) != 2 || auth[0] != "Bearer" || auth[1] == "" {
			c.Header("WWW-Authenticate", "Bearer")
			CaptureAndAbort(c, errdefs.New(errdefs.CodeUnauthorized, "the required authorization headers were not present in the request"))
			return
		}

		user, err := tokens.Verify(auth[1])
		if err != nil {
			ExtractLogger(c).WithField("error", err).Debug("rejected bearer token")
			c.Header("WWW-Authenticate", "Bearer")
			CaptureAndAbort(c, errdefs.New(errdefs.CodeUnauthorized, "the provided token is not valid"))
			return
		}
		c.Set("user", user)
		c.Set("logger", ExtractLogger(c).WithField("user", user))
		c.Next()
	}
}

// RequireUUIDParams rejects requests whose named path parameters are not
// UUIDs. Such identifiers can never match a stored entity, so they are
// reported as not found without touching the database.
func RequireUUIDParams(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range params {
			if v := c.Param(p); !govalidator.IsUUID(v) {
				CaptureAndAbort(c, errdefs.NotFound("no %s exists with the identifier %q", p, v))
				return
			}
		}
		c.Next()
	}
}

// ExtractLogger pulls the logger out of the request context and returns it. By
// default this will include the request ID, but may also contain the user ID
// once the request has been authorized.
func ExtractLogger(c *gin.Context) *log.Entry {
	v, ok := c.Get("logger")
	if !ok {
		return log.WithField("request_id", c.GetString("request_id"))
	}
	return v.(*log.Entry)
}

// ExtractUser returns the id of the user the request was authorized for.
func ExtractUser(c *gin.Context) string {
	return c.GetString("user")
}

// ExtractPlanner returns the planner service attached to the request context.
func ExtractPlanner(c *gin.Context) *planner.Service {
	v, ok := c.Get("planner")
	if !ok {
		panic("middleware/middleware: cannot extract planner: not present in request context")
	}
	return v.(*planner.Service)
}
