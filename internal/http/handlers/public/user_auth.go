package public

import (
	"errors"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Locale      string `json:"locale"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

type loginRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// GetImageCaptcha issues an image captcha challenge.
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.Generate()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// UserRegister creates a consumer account.
func (h *Handler) UserRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	user, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Locale:      req.Locale,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			response.BadRequest(c, err.Error())
			return
		}
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// UserLogin verifies credentials and opens a session. The session token
// travels only in an HttpOnly cookie.
func (h *Handler) UserLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	user, session, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	sessionCfg := h.Config.Session
	maxAge := sessionCfg.TTLHours * 3600
	if maxAge <= 0 {
		maxAge = 30 * 24 * 3600
	}
	c.SetCookie(sessionCfg.CookieName, session.Token, maxAge, "/", sessionCfg.CookieDomain, sessionCfg.Secure, true)
	response.Success(c, user)
}

// UserLogout closes the current session and clears the cookie.
func (h *Handler) UserLogout(c *gin.Context) {
	sessionCfg := h.Config.Session
	if token, ok := c.Get("session_token"); ok {
		if t, ok := token.(string); ok && t != "" {
			if err := h.UserAuthService.Logout(t); err != nil {
				shared.RequestLog(c).Warnw("logout_failed", "error", err)
			}
		}
	}
	c.SetCookie(sessionCfg.CookieName, "", -1, "/", sessionCfg.CookieDomain, sessionCfg.Secure, true)
	response.Success(c, nil)
}
