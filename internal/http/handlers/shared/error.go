package shared

import (
	"errors"

	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/i18n"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog returns a logger carrying the request ID.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError writes a localized error response and logs the cause.
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg writes an error response with a literal message.
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError maps service sentinels onto response codes. The
// sentinel's wrapped detail goes to the client; unknown errors become a
// generic internal error so internals never leak.
func RespondServiceError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, i18n.T(locale, "error.not_found"))
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Error(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, i18n.T(locale, "error.forbidden"))
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidPassword):
		response.Unauthorized(c, i18n.T(locale, "error.unauthorized"))
	case errors.Is(err, service.ErrSessionExpired):
		response.Unauthorized(c, i18n.T(locale, "error.session_invalid"))
	case errors.Is(err, service.ErrUserDisabled):
		response.Unauthorized(c, i18n.T(locale, "error.user_disabled"))
	case errors.Is(err, service.ErrCaptchaInvalid):
		response.BadRequest(c, i18n.T(locale, "error.captcha_invalid"))
	default:
		RespondError(c, response.CodeInternal, "error.internal", err)
	}
}
