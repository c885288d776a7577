package widgetauth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenRoute is the path the host platform calls to generate a widget token.
const TokenRoute = "/api/data/v9.2/new_GenerateInsideboardJWT"

// RequestID returns a Gin middleware that propagates X-Request-ID, generating one if absent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// TokenHandler returns a Gin handler that serves the token request contract:
// JSON {"UserEmail","SecretKey"} in, JSON {"JWT"} out.
func TokenHandler(gw *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"reason":  "MALFORMED_REQUEST",
				"message": "request body must be a JSON object",
			})
			return
		}

		resp, err := gw.Handle(c.Request.Context(), req)
		if err != nil {
			c.AbortWithStatusJSON(statusFor(err), buildErrorResponse(err))
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// RegisterRoutes mounts the token endpoint on r
func RegisterRoutes(r gin.IRoutes, gw *Gateway) {
	r.POST(TokenRoute, TokenHandler(gw))
}

func statusFor(err error) int {
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// buildErrorResponse constructs the error body; the message never contains key material
func buildErrorResponse(err error) gin.H {
	kind := "internal"
	if IsValidation(err) {
		kind = "bad_request"
	}

	response := gin.H{
		"error":  kind,
		"reason": string(CodeOf(err)),
	}
	if e, ok := err.(*Error); ok && e.Message != "" {
		response["message"] = e.Message
	}
	return response
}
