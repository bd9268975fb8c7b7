package httpapi

import (
	"errors"
	"net/http"

	"invite-media/domain/failure"

	"github.com/gin-gonic/gin"
)

// statusFor maps a failure code to the HTTP status returned to callers
func statusFor(code failure.Code) int {
	switch code {
	case failure.CodeAdmission, failure.CodeInvalidInput:
		return http.StatusBadRequest
	case failure.CodeUnauthorized:
		return http.StatusUnauthorized
	case failure.CodeStorage, failure.CodeNetwork, failure.CodeUnexpectedResponse, failure.CodeServerResponse:
		return http.StatusBadGateway
	case failure.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to return to the browser
func publicMessage(fe *failure.Error) string {
	if fe.Code == failure.CodeCredential {
		return "Storage credentials are not configured correctly"
	}
	return fe.Message
}

func errorBody(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// abortWithError writes the failure carried by err
func abortWithError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody("Request body is too large"))
		return
	}
	fe := failure.From(err)
	c.AbortWithStatusJSON(statusFor(fe.Code), errorBody(publicMessage(fe)))
}
