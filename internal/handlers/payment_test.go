package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-platform/internal/identity"
	"coffee-platform/internal/models"
	"coffee-platform/internal/payment"
	"coffee-platform/internal/store"
)

type memStore struct {
	payments map[string]*models.Payment
}

func (m *memStore) CreatePayment(_ context.Context, p *models.Payment) error {
	m.payments[p.OID] = p
	return nil
}

func (m *memStore) PaymentByOID(_ context.Context, oid string) (*models.Payment, error) {
	p, ok := m.payments[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ConfirmPayment(_ context.Context, oid string) (bool, error) {
	p, ok := m.payments[oid]
	if !ok || p.Done {
		return false, nil
	}
	p.Done = true
	return true, nil
}

func (m *memStore) TopSupporters(_ context.Context, username string, limit int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.ToUser == username && p.Done {
			out = append(out, *p)
		}
	}
	return out, nil
}

type singleUserResolver struct {
	user *models.User
}

func (r *singleUserResolver) Resolve(_ context.Context, identifier string) (*models.User, error) {
	if identity.NormalizeHandle(identifier) == r.user.Username {
		return r.user, nil
	}
	return nil, identity.ErrNotFound
}

type stubProvider struct{}

func (stubProvider) CreateOrder(_ context.Context, _, _ string, amountMinor int64, currency string) (payment.Order, error) {
	return payment.Order{ID: "order_stub", Amount: amountMinor, Currency: currency}, nil
}

func newVerifyRouter(t *testing.T, st *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	user := &models.User{
		ID:             "507f1f77bcf86cd799439011",
		Username:       "alice",
		RazorpayKeyID:  "rzp_test_key",
		RazorpaySecret: "alice-secret",
	}
	svc := payment.NewService(st, &singleUserResolver{user: user}, stubProvider{}, nil, payment.Config{})
	h := NewPaymentHandler(svc)

	r := gin.New()
	r.POST("/api/payments/verify", h.Verify)
	r.POST("/api/payments/initiate", h.Initiate)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpointHappyPath(t *testing.T) {
	st := &memStore{payments: map[string]*models.Payment{
		"order_1": {OID: "order_1", Amount: 20, ToUser: "alice", Name: "Sam"},
	}}
	r := newVerifyRouter(t, st)

	sig := payment.Signature("order_1", "pay_1", "alice-secret")
	w := postJSON(r, "/api/payments/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	assert.True(t, st.payments["order_1"].Done)
}

func TestVerifyEndpointUnknownOrder(t *testing.T) {
	r := newVerifyRouter(t, &memStore{payments: map[string]*models.Payment{}})

	w := postJSON(r, "/api/payments/verify", gin.H{
		"razorpay_order_id":   "order_missing",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "whatever",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Order not found")
}

func TestVerifyEndpointBadSignature(t *testing.T) {
	st := &memStore{payments: map[string]*models.Payment{
		"order_1": {OID: "order_1", Amount: 20, ToUser: "alice"},
	}}
	r := newVerifyRouter(t, st)

	w := postJSON(r, "/api/payments/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Signature("order_1", "pay_1", "wrong-secret"),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Payment verification failed")
	assert.False(t, st.payments["order_1"].Done)
}

func TestVerifyEndpointMissingFields(t *testing.T) {
	st := &memStore{payments: map[string]*models.Payment{
		"order_1": {OID: "order_1", Amount: 20, ToUser: "alice"},
	}}
	r := newVerifyRouter(t, st)

	w := postJSON(r, "/api/payments/verify", gin.H{
		"razorpay_order_id":  "order_1",
		"razorpay_signature": "sig",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing payment fields")
}

func TestInitiateEndpointHappyPath(t *testing.T) {
	st := &memStore{payments: map[string]*models.Payment{}}
	r := newVerifyRouter(t, st)

	w := postJSON(r, "/api/payments/initiate", gin.H{
		"amount":               2000,
		"recipient_identifier": "alice",
		"note":                 gin.H{"name": "Sam", "message": "Great work!"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "order_stub", "amount": 2000, "currency": "INR"}`, w.Body.String())

	record := st.payments["order_stub"]
	require.NotNil(t, record)
	assert.Equal(t, 20.0, record.Amount)
	assert.False(t, record.Done)
}

func TestInitiateEndpointRejectsBadAmount(t *testing.T) {
	r := newVerifyRouter(t, &memStore{payments: map[string]*models.Payment{}})

	w := postJSON(r, "/api/payments/initiate", gin.H{
		"amount":               0,
		"recipient_identifier": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiateEndpointUnknownRecipient(t *testing.T) {
	r := newVerifyRouter(t, &memStore{payments: map[string]*models.Payment{}})

	w := postJSON(r, "/api/payments/initiate", gin.H{
		"amount":               1000,
		"recipient_identifier": "nobody",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
