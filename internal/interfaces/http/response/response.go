package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/pkg/logger"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps err to its AppError and renders {code, message}. Internal
// errors are logged and never echoed to the client.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr.Code == domainerrors.CodeInternalError {
		logger.Error(c.Request.Context(), "request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	var gwErr *domainerrors.GatewayError
	if errors.As(err, &gwErr) {
		body["referenceId"] = gwErr.ReferenceID
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithStatus sends an error response with a specific status and message
func ErrorWithStatus(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
