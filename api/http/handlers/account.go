package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/turuapp/backend/api/http/presenter"
	"github.com/turuapp/backend/pkg/account"
)

// AccountHandler exposes the account identity operations over HTTP.
type AccountHandler struct {
	uc account.UseCase
	// Limit uploaded picture size read into memory (bytes)
	maxUploadBytes int64
}

func NewAccountHandler(uc account.UseCase) *AccountHandler {
	return &AccountHandler{uc: uc, maxUploadBytes: 5 << 20} // 5MB
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the account view.
// @Summary Login
// @Tags    account
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} account.View
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /login [post]
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "Username and password are required")
	}

	view, err := h.uc.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		var vErr account.ValidationError
		switch {
		case errors.As(err, &vErr):
			return presenter.Error(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, account.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusUnauthorized, "Invalid username or password")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "Failed to login")
		}
	}
	return presenter.JSON(c, http.StatusOK, view)
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
}

// Register creates a new account.
// @Summary Register account
// @Tags    account
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload; birthDate is an optional ISO date"
// @Success 200 {object} presenter.MessageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /register [post]
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "Username and password are required")
	}

	err := h.uc.Register(c.Context(), req.Username, req.Password, req.Gender, req.BirthDate)
	if err != nil {
		var vErr account.ValidationError
		switch {
		case errors.As(err, &vErr):
			return presenter.Error(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, account.ErrUsernameTaken):
			return presenter.Error(c, http.StatusConflict, "Username already exists")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "Registration failed due to an unexpected error")
		}
	}
	return presenter.Message(c, http.StatusOK, "Register successful")
}

// Profile returns the sanitized account view.
// @Summary Get profile
// @Tags    account
// @Produce json
// @Param   id path int true "account id"
// @Success 200 {object} account.View
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /user/{id} [get]
func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid account id")
	}
	view, err := h.uc.Profile(c.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "User not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "Failed to load profile")
	}
	return presenter.JSON(c, http.StatusOK, view)
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// UpdateProfile renames the account.
// @Summary Update profile
// @Tags    account
// @Accept  json
// @Produce json
// @Param   id    path int                  true "account id"
// @Param   input body updateProfileRequest true "profile payload"
// @Success 200 {object} presenter.MessageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /user/{id} [put]
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid account id")
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" {
		return presenter.Error(c, http.StatusBadRequest, "Username is required")
	}

	if err := h.uc.UpdateProfile(c.Context(), id, req.Username); err != nil {
		var vErr account.ValidationError
		switch {
		case errors.As(err, &vErr):
			return presenter.Error(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, account.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, account.ErrUsernameTaken):
			return presenter.Error(c, http.StatusConflict, "Username already exists")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "Error updating profile")
		}
	}
	return presenter.Message(c, http.StatusOK, "Profile updated successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword replaces the credential digest after verifying the old
// password.
// @Summary Change password
// @Tags    account
// @Accept  json
// @Produce json
// @Param   id    path int                   true "account id"
// @Param   input body changePasswordRequest true "password payload"
// @Success 200 {object} presenter.MessageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /user/{id}/password [put]
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid account id")
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return presenter.Error(c, http.StatusBadRequest, "Old and new passwords are required")
	}

	if err := h.uc.ChangePassword(c.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		var vErr account.ValidationError
		switch {
		case errors.As(err, &vErr):
			return presenter.Error(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, account.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, account.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusUnauthorized, "Old password is incorrect")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "Error updating password")
		}
	}
	return presenter.Message(c, http.StatusOK, "Password updated successfully")
}

// UploadPicture stores a new profile picture and returns its URL.
// @Summary Upload profile picture
// @Tags    account
// @Accept  multipart/form-data
// @Produce json
// @Param   id   path     int  true "account id"
// @Param   file formData file true "picture file"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /user/{id}/profile-picture [post]
func (h *AccountHandler) UploadPicture(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid account id")
	}
	fh, err := c.FormFile("file")
	if err != nil || fh == nil || fh.Size == 0 {
		return presenter.Error(c, http.StatusBadRequest, "Please select a file to upload")
	}
	if fh.Size > h.maxUploadBytes {
		return presenter.Error(c, http.StatusBadRequest, "file is too large")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	url, err := h.uc.SetProfilePicture(c.Context(), id, data, fh.Filename)
	if err != nil {
		var vErr account.ValidationError
		switch {
		case errors.As(err, &vErr):
			return presenter.Error(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, account.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, account.ErrStorage):
			return presenter.Error(c, http.StatusInternalServerError, "Failed to upload image")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "An unexpected error occurred")
		}
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"message":           "Profile picture updated successfully",
		"profilePictureUrl": url,
	})
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
