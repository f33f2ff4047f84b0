package handlers

import (
	"strings"

	"NeighborGuard/internal/models"
	apperrors "NeighborGuard/pkg/errors"
	"NeighborGuard/pkg/middleware"
	"NeighborGuard/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	Platform   string `json:"platform"`
	DeviceName string `json:"deviceName"`
	AppVersion string `json:"appVersion"`
}

type unregisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// handleRegisterDevice upserts the caller's push token; a token seen under
// another user is moved to the caller.
func (h *Handlers) handleRegisterDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "device token is required", nil)
		return
	}
	platform := models.Platform(strings.ToUpper(strings.TrimSpace(req.Platform)))
	if platform != "" && platform != models.PlatformIOS && platform != models.PlatformAndroid {
		response.AbortWithError(c, apperrors.WithCodef(apperrors.CodeInvalidInput,
			"platform must be %s or %s", models.PlatformIOS, models.PlatformAndroid))
		return
	}
	dt, err := h.store.RegisterDeviceToken(c.Request.Context(), &models.DeviceToken{
		UserID:     middleware.CurrentUserID(c),
		Token:      strings.TrimSpace(req.Token),
		Platform:   platform,
		DeviceName: req.DeviceName,
		AppVersion: req.AppVersion,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	h.logger.Info("device registered", zap.String("user_id", dt.UserID), zap.String("platform", string(dt.Platform)))
	response.Success(c, "device registered", gin.H{"device": gin.H{
		"id":         dt.ID,
		"platform":   dt.Platform,
		"deviceName": dt.DeviceName,
		"isActive":   dt.IsActive,
	}})
}

func (h *Handlers) handleUnregisterDevice(c *gin.Context) {
	var req unregisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "device token is required", nil)
		return
	}
	n, err := h.store.UnregisterDeviceToken(c.Request.Context(), middleware.CurrentUserID(c), strings.TrimSpace(req.Token))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "device unregistered", gin.H{"removed": n})
}
