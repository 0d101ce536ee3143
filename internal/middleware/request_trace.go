package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmednasr/blogsage/internal/logger"
)

const headerRequestID = "X-Request-Id"

// maxRequestIDLen bounds client-supplied ids.
const maxRequestIDLen = 64

// RequestIDKey is the c.Locals key holding the request id.
const RequestIDKey = "request_id"

// RequestTrace guarantees every inbound request a request id, echoes it in
// the response header and logs the completed request.
func RequestTrace() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(headerRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(headerRequestID, requestID)

		// Run the error handler here so the logged status is the one sent.
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := logger.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			fields["query"] = q
		}
		logger.InfoWithFields("completed request", fields)
		return nil
	}
}

// validRequestID accepts up to maxRequestIDLen ASCII letters, digits, '-'
// and '_'. Anything else is replaced before it reaches headers or logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}
	return true
}
