package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffee-platform/internal/identity"
	"coffee-platform/internal/models"
	"coffee-platform/internal/store"
)

// ProfileStore is the slice of the store the profile flows need.
type ProfileStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, oldUsername string, upd store.ProfileUpdate) (*models.User, error)
	PaymentsForUser(ctx context.Context, username string) ([]models.Payment, error)
}

type ProfileHandler struct {
	Store    ProfileStore
	Resolver *identity.Resolver
}

func NewProfileHandler(st ProfileStore, resolver *identity.Resolver) *ProfileHandler {
	return &ProfileHandler{Store: st, Resolver: resolver}
}

func (h *ProfileHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return nil, false
	}
	user, err := h.Store.UserByID(c.Request.Context(), userID.(string))
	if err != nil {
		log.Println("profile: failed to load current user:", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, false
	}
	return user, true
}

// GetMe returns the authenticated creator's own profile. The widget token
// is included here (and only here) so the creator can configure their alert
// overlay; the provider secret never is.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "widget_token": user.WidgetToken})
}

// GetPublicProfile resolves any identifier to a public page shape: stable
// scalar fields only, no email, no key material.
func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	user, err := h.Resolver.Resolve(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Println("profile: public lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               user.ID,
		"username":         user.Username,
		"name":             user.Name,
		"profile_pic":      user.ProfilePic,
		"cover_pic":        user.CoverPic,
		"accepts_payments": user.AcceptsPayments(),
	})
}

// UpdateProfileRequest enumerates every field an update may touch. Nil
// means unchanged; anything else in the body is ignored by the decoder.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Username       *string `json:"username"`
	ProfilePic     *string `json:"profilepic"`
	CoverPic       *string `json:"coverpic"`
	RazorpayKeyID  *string `json:"razorpayid"`
	RazorpaySecret *string `json:"razorpaysecret"`
}

// UpdateProfile applies a sparse update. A handle change is normalized,
// checked for collisions, and cascades to the user's payment history so
// public supporter pages keep attributing old payments correctly.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Email != nil {
		// Same normalization signup applies, so lookups by email stay exact.
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}

	if req.Username != nil {
		normalized := identity.NormalizeHandle(*req.Username)
		if len(normalized) < 2 || len(normalized) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username. Use 2-50 characters."})
			return
		}
		req.Username = &normalized

		if normalized != user.Username {
			_, err := h.Store.UserByUsername(c.Request.Context(), normalized)
			if err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			if !errors.Is(err, store.ErrNotFound) {
				log.Println("profile: username availability check failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
				return
			}
		}
	}

	updated, err := h.Store.UpdateProfile(c.Request.Context(), user.Username, store.ProfileUpdate{
		Name:           req.Name,
		Email:          req.Email,
		Username:       req.Username,
		ProfilePic:     req.ProfilePic,
		CoverPic:       req.CoverPic,
		RazorpayKeyID:  req.RazorpayKeyID,
		RazorpaySecret: req.RazorpaySecret,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Println("profile: update failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
}

// GetMyPayments lists everything addressed to the creator, newest first,
// pending included. Dashboard only; the public ledger lives elsewhere.
func (h *ProfileHandler) GetMyPayments(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	payments, err := h.Store.PaymentsForUser(c.Request.Context(), user.Username)
	if err != nil {
		log.Println("profile: failed to get payments:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
