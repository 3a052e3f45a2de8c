package models

import "time"

// We use 'db' tags for sqlx to automatically map
// the database column names (snake_case) to our Go fields (CamelCase).

// User is one creator account. ID is a 24-character hex string minted at
// signup. Username holds the normalized handle and is unique. The Razorpay
// key secret must never leave this process: it is excluded from JSON here
// and scrubbed from every handler response.
type User struct {
	ID             string    `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	ProfilePic     string    `db:"profile_pic" json:"profile_pic"`
	CoverPic       string    `db:"cover_pic" json:"cover_pic"`
	RazorpayKeyID  string    `db:"razorpay_key_id" json:"razorpay_key_id"`
	RazorpaySecret string    `db:"razorpay_key_secret" json:"-"`
	WidgetToken    string    `db:"widget_token" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// AcceptsPayments reports whether the account has a provider key id
// configured. The secret is checked separately because a process-wide
// fallback may stand in for it in sandbox setups.
func (u *User) AcceptsPayments() bool {
	return u.RazorpayKeyID != ""
}

// Payment tracks one provider order from pending to confirmed. OID is the
// provider-assigned order id and is unique. ToUser is the recipient's handle
// copied by value so history survives renames (a rename rewrites these rows
// in bulk). Amount is stored in major currency units.
type Payment struct {
	ID        int64     `db:"id" json:"-"`
	OID       string    `db:"oid" json:"oid"`
	Amount    float64   `db:"amount" json:"amount"`
	ToUser    string    `db:"to_user" json:"to_user"`
	Name      string    `db:"name" json:"name"`
	Message   string    `db:"message" json:"message"`
	Done      bool      `db:"done" json:"done"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Otp is a short-lived email verification code issued during signup.
type Otp struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Username  string    `db:"username"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
}
