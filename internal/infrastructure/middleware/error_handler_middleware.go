package middleware

import (
	goerrors "errors"
	"net/http"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// mapDomainError lifts core sentinel errors into AppErrors so handlers can
// push domain errors onto the gin error stack unchanged.
func mapDomainError(err error) *errors.AppError {
	switch {
	case goerrors.Is(err, domain.ErrStreamNotFound):
		return errors.NewNotFound("stream")
	case goerrors.Is(err, domain.ErrInterventionNotFound):
		return errors.NewNotFound("intervention")
	case goerrors.Is(err, domain.ErrTakeoverNotFound):
		return errors.NewNotFound("takeover")
	case goerrors.Is(err, domain.ErrModeratorNotFound):
		return errors.NewNotFound("moderator")
	case goerrors.Is(err, domain.ErrMessageNotFound):
		return errors.NewNotFound("message")
	case goerrors.Is(err, domain.ErrUserNotFound):
		return errors.NewNotFound("user")
	case goerrors.Is(err, domain.ErrStreamNotLive):
		return errors.NewNotLive(err.Error())
	case goerrors.Is(err, domain.ErrStreamAlreadyLive):
		return errors.NewAlreadyLive(err.Error())
	case goerrors.Is(err, domain.ErrInterventionActive),
		goerrors.Is(err, domain.ErrTakeoverActive),
		goerrors.Is(err, domain.ErrInterventionNotActive),
		goerrors.Is(err, domain.ErrTakeoverNotActive):
		return errors.NewAlreadyActive(err.Error())
	case goerrors.Is(err, domain.ErrAuthorityConflict):
		return errors.NewAuthorityConflict(err.Error())
	case goerrors.Is(err, domain.ErrGuestCapacity):
		return errors.NewCapacityExceeded(err.Error())
	case goerrors.Is(err, domain.ErrAlreadyModerated):
		return errors.NewAlreadyModerated(err.Error())
	case goerrors.Is(err, domain.ErrInvalidInput):
		return errors.NewInvalidInput(err.Error())
	case goerrors.Is(err, domain.ErrForbidden):
		return errors.NewForbidden(err.Error())
	case goerrors.Is(err, domain.ErrUpstreamUnavailable):
		return errors.NewUpstreamUnavailable(err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware handles application errors and returns appropriate HTTP responses
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr := errors.GetAppError(err)
		if appErr == nil {
			appErr = mapDomainError(err)
		}
		if appErr != nil {
			logger.Errorw("application error",
				"code", appErr.Code,
				"message", appErr.Message,
				"status", appErr.HTTPStatus,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"context", appErr.Context,
			)

			c.JSON(appErr.HTTPStatus, gin.H{
				"error":   string(appErr.Code),
				"message": appErr.Message,
				"details": appErr.Context,
			})
			return
		}

		logger.Errorw("unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeInternal),
			"message": "Internal server error",
		})
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   string(errors.ErrCodeInternal),
					"message": "Internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
