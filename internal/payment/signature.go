package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the provider's callback signature: hex-encoded
// HMAC-SHA256 over "order_id|payment_id" keyed by the recipient's secret.
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a supplied signature in constant time. The
// comparison is against the exact lowercase hex string the provider emits;
// no trimming or case folding is applied to the supplied value.
func VerifySignature(orderID, paymentID, secret, supplied string) bool {
	return hmac.Equal([]byte(Signature(orderID, paymentID, secret)), []byte(supplied))
}
