package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"coffee-platform/internal/identity"
	"coffee-platform/internal/mail"
	"coffee-platform/internal/models"
	"coffee-platform/internal/store"
)

const otpTTL = 5 * time.Minute

// AuthStore is the slice of the store the auth flows need. *store.Store
// satisfies it; tests use an in-memory fake.
type AuthStore interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmailUsername(ctx context.Context, email, pattern string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ReplaceOtp(ctx context.Context, email, username, code string, expiresAt time.Time) error
	ConsumeOtp(ctx context.Context, email, username, code string) (bool, error)
}

type AuthHandler struct {
	Store     AuthStore
	Resolver  *identity.Resolver
	Mailer    mail.Sender
	JwtSecret string
}

func NewAuthHandler(st AuthStore, resolver *identity.Resolver, mailer mail.Sender, jwtSecret string) *AuthHandler {
	return &AuthHandler{Store: st, Resolver: resolver, Mailer: mailer, JwtSecret: jwtSecret}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type RequestOtpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

// RequestOtp mails a signup verification code after checking the requested
// handle is still free.
func (h *AuthHandler) RequestOtp(c *gin.Context) {
	var req RequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and username are required"})
		return
	}

	email := normalizeEmail(req.Email)
	username := identity.NormalizeHandle(req.Username)
	if len(username) < 2 || len(username) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username. Use 2-50 characters."})
		return
	}

	_, err := h.Store.UserByUsername(c.Request.Context(), username)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Println("auth: username availability check failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	code, err := otpCode()
	if err != nil {
		log.Println("auth: otp generation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if err := h.Store.ReplaceOtp(c.Request.Context(), email, username, code, time.Now().Add(otpTTL)); err != nil {
		log.Println("auth: failed to store otp:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if err := h.Mailer.SendOtp(email, code, "signup"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send verification email."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent."})
}

type RegisterRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	Email          string `json:"email" binding:"required,email"`
	Otp            string `json:"otp" binding:"required"`
	Name           string `json:"name"`
	RazorpayKeyID  string `json:"razorpayid"`
	RazorpaySecret string `json:"razorpaysecret"`
}

// Register creates an account once the mailed OTP checks out.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	email := normalizeEmail(req.Email)
	username := identity.NormalizeHandle(req.Username)
	if len(username) < 2 || len(username) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username. Use 2-50 characters."})
		return
	}

	ok, err := h.Store.ConsumeOtp(c.Request.Context(), email, username, strings.TrimSpace(req.Otp))
	if err != nil {
		log.Println("auth: otp check failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("auth: password hashing error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again."})
		return
	}

	user := &models.User{
		ID:             store.NewID(),
		Username:       username,
		Name:           req.Name,
		Email:          email,
		PasswordHash:   string(passwordHash),
		RazorpayKeyID:  req.RazorpayKeyID,
		RazorpaySecret: req.RazorpaySecret,
		WidgetToken:    uuid.NewString(),
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		log.Println("auth: failed to insert new user:", err)
		// The unique constraints make a duplicate handle or email land here.
		c.JSON(http.StatusConflict, gin.H{"error": "Email or username may already be in use."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User created successfully.",
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login accepts a handle or email, resolved through the same precedence the
// public pages use, and returns a signed JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.Resolver.Resolve(c.Request.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
			return
		}
		log.Println("auth: login lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
		return
	}

	tokenString, err := h.createJWT(user)
	if err != nil {
		log.Println("auth: failed to create JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful.", "token": tokenString})
}

func (h *AuthHandler) createJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JwtSecret))
}

type RequestPasswordOtpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

// RequestPasswordOtp mails a reset code, but only when the email and
// username identify the same account. The username check is anchored and
// case-insensitive so legacy mixed-case handles can still recover.
func (h *AuthHandler) RequestPasswordOtp(c *gin.Context) {
	var req RequestPasswordOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and username are required"})
		return
	}

	email := normalizeEmail(req.Email)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	pattern := "^" + regexp.QuoteMeta(username) + "$"

	user, err := h.Store.UserByEmailUsername(c.Request.Context(), email, pattern)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No user found with provided email and username"})
			return
		}
		log.Println("auth: reset lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	code, err := otpCode()
	if err != nil {
		log.Println("auth: otp generation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	if err := h.Store.ReplaceOtp(c.Request.Context(), email, username, code, time.Now().Add(otpTTL)); err != nil {
		log.Println("auth: failed to store reset otp:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	if err := h.Mailer.SendOtp(user.Email, code, "reset"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	Otp         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword checks the mailed code and rehashes the password. The user
// lookup runs before the code is consumed so a mismatched account never
// burns a still-valid OTP.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	email := normalizeEmail(req.Email)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	pattern := "^" + regexp.QuoteMeta(username) + "$"

	user, err := h.Store.UserByEmailUsername(c.Request.Context(), email, pattern)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No user found with provided email and username"})
			return
		}
		log.Println("auth: reset lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	ok, err := h.Store.ConsumeOtp(c.Request.Context(), email, username, strings.TrimSpace(req.Otp))
	if err != nil {
		log.Println("auth: reset otp check failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Println("auth: password hashing error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	if err := h.Store.UpdatePassword(c.Request.Context(), user.ID, string(passwordHash)); err != nil {
		log.Println("auth: failed to update password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// otpCode draws a 6-digit code from crypto/rand.
func otpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
