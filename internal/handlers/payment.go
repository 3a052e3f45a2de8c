package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffee-platform/internal/payment"
)

type PaymentHandler struct {
	Service *payment.Service
}

func NewPaymentHandler(service *payment.Service) *PaymentHandler {
	return &PaymentHandler{Service: service}
}

type InitiateRequest struct {
	Amount              int64        `json:"amount" binding:"required,gt=0"`
	RecipientIdentifier string       `json:"recipient_identifier" binding:"required"`
	Note                payment.Note `json:"note"`
}

// Initiate opens a provider order for the recipient and hands the order
// descriptor back to the browser to drive the checkout UI. Amount arrives
// in minor units (paise) and is forwarded unscaled.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.Service.Initiate(c.Request.Context(), req.Amount, req.RecipientIdentifier, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		case errors.Is(err, payment.ErrRecipientUnconfigured):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient is not set up to receive payments"})
		case errors.Is(err, payment.ErrRecipientSecretMissing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient payment setup is incomplete"})
		case errors.Is(err, payment.ErrProviderOrder):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway error.", "detail": "order creation failed"})
		case errors.Is(err, payment.ErrRecordPersist):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		default:
			log.Println("payment: initiate failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// VerifyRequest field names follow the provider's callback convention and
// must not be renamed.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify checks the provider callback and promotes the matching pending
// record. Every failure kind gets its own status and message; "not found"
// and "verification failed" must stay distinguishable for the caller.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid notification format"})
		return
	}

	err := h.Service.Verify(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		case errors.Is(err, payment.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case errors.Is(err, payment.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing payment fields"})
		case errors.Is(err, payment.ErrSecretMissing):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Receiver payment setup is incomplete"})
		case errors.Is(err, payment.ErrVerificationFailed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment verification failed"})
		case errors.Is(err, payment.ErrConfirmFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update payment status"})
		default:
			log.Println("payment: verify failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TopSupporters serves the public ledger: confirmed payments only, largest
// first, capped at ten.
func (h *PaymentHandler) TopSupporters(c *gin.Context) {
	supporters, err := h.Service.TopSupporters(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		if errors.Is(err, payment.ErrRecipientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		log.Println("payment: supporters read failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, supporters)
}
