// user.go - Handles user registration, login and profile

package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"go-inventory-backend/auth"
	"go-inventory-backend/middleware"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Name         string                `form:"name" binding:"required,min=3,max=50"`
	Email        string                `form:"email" binding:"required,email"`
	Password     string                `form:"password" binding:"required,min=6,max=100"`
	ProfileImage *multipart.FileHeader `form:"profile_image" binding:"required"`
}

type LoginInput struct {
	Username string `form:"username" binding:"required"` // the account email
	Password string `form:"password" binding:"required"`
}

// Register - Creates an account from a multipart form
// The profile image is required and stored before the user row is written.
//
// How it works:
// 1. Binds and validates name, email, password and profile_image
// 2. Hashes the password with bcrypt
// 3. Saves the image to the media store under profile_images/
// 4. Inserts the user; on failure the stored image is removed again
// 5. Returns the user with an absolute profile image URL
func (h *Handler) Register(c *gin.Context) {
	// STEP 1: Validate the multipart form
	var input RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		bindFailed(c, &input, err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		serverError(c, "register: hash password", err)
		return
	}

	// STEP 2: Store the profile image
	key, err := h.upload(c.Request.Context(), "profile_images", input.ProfileImage)
	if err != nil {
		serverError(c, "register: upload profile image", err)
		return
	}

	// STEP 3: Save the user, undoing the upload if that fails
	user := models.User{
		Name:           input.Name,
		Email:          input.Email,
		ProfileImage:   key,
		HashedPassword: hash,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		h.discardMedia(c.Request.Context(), key)
		if errors.Is(err, models.ErrConflict) {
			detail(c, http.StatusBadRequest, "Email is already registered")
			return
		}
		serverError(c, "register: create user", err)
		return
	}

	c.JSON(http.StatusOK, h.userResponse(c, &user))
}

// Login - Exchanges email and password for a bearer token
// Accepts the OAuth2 password form (username holds the email).
// Unknown emails and wrong passwords get the same 401.
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		bindFailed(c, &input, err)
		return
	}

	user, err := h.credentials.Authenticate(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.Header("WWW-Authenticate", "Bearer")
		detail(c, http.StatusUnauthorized, "Wrong email or password")
		return
	}
	if err != nil {
		serverError(c, "login", err)
		return
	}

	token, err := h.credentials.IssueFor(user)
	if err != nil {
		serverError(c, "login: issue token", err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me - Returns the user resolved by the auth middleware
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, h.userResponse(c, middleware.CurrentUser(c)))
}
