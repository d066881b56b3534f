package api

import (
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/service"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type AvatarUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// GetMe godoc
// @Summary Get the caller's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.abortProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile.User, profile.AvatarURL))
}

// UpdateMe godoc
// @Summary Update the caller's display name
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "New name"
// @Success 200 {object} UserResponse
// @Router /me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if err := h.profileService.UpdateName(c.Request.Context(), userID, req.Name); err != nil {
		h.abortProfileError(c, err)
		return
	}
	h.GetMe(c)
}

// RequestAvatarUploadURL godoc
// @Summary Get a presigned URL to upload an avatar image
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body AvatarUploadURLRequest true "Image content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Not an image"
// @Router /me/avatar/upload-url [post]
func (h *ProfileHandler) RequestAvatarUploadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req AvatarUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	resp, err := h.profileService.RequestAvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		h.abortProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmAvatar godoc
// @Summary Confirm an uploaded avatar
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body ConfirmAvatarRequest true "Object key returned by upload-url"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Key not uploaded"
// @Failure 403 {object} gin.H "Key belongs to another user"
// @Router /me/avatar [put]
func (h *ProfileHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	profile, err := h.profileService.ConfirmAvatar(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		h.abortProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile.User, profile.AvatarURL))
}

func (h *ProfileHandler) abortProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidAvatarType),
		errors.Is(err, service.ErrAvatarNotUploaded),
		errors.Is(err, domain.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAvatarKeyForeign):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		log.Printf("ERROR: Profile request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to process profile request")
	}
}
