package models

import "time"

// Store is the row the external record service keeps per connected shop.
// A store is "connected" once the SSO callback has written both primary
// credential fields; the secondary (Razorpay) pair is optional and its
// secret is encrypted at rest.
type Store struct {
	ID                   string    `json:"id"`
	Username             string    `json:"username"`
	AppUserID            string    `json:"app_user_id"`
	StoreURL             string    `json:"store_url"`
	ConsumerKey          string    `json:"consumer_key"`
	ConsumerSecret       string    `json:"consumer_secret"`
	KeyID                string    `json:"key_id"`
	RazorpayKeyID        string    `json:"razorpay_key_id"`
	RazorpayKeySecretEnc string    `json:"razorpay_key_secret_enc"`
	RazorpaySkipped      bool      `json:"razorpay_skipped"`
	CreatedAt            time.Time `json:"created_at"`
}

// IsConnected reports whether the handshake has completed for this store.
func (s *Store) IsConnected() bool {
	return s.ConsumerKey != "" && s.ConsumerSecret != ""
}

// IsRazorpayConnected reports whether the secondary credential pair is on file.
func (s *Store) IsRazorpayConnected() bool {
	return s.RazorpayKeyID != "" && s.RazorpayKeySecretEnc != ""
}
