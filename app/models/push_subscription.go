package models

// PushSubscription is one client device delivery endpoint as handed to us by
// the browser push API. Subscriptions live in process memory only and are
// deduplicated by structural equality.
type PushSubscription struct {
	Endpoint string               `json:"endpoint" validate:"required,url"`
	Keys     PushSubscriptionKeys `json:"keys"`
}

// PushSubscriptionKeys carries the client's encryption key material.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// Equal reports full structural equality; subscribe is idempotent on it.
func (p PushSubscription) Equal(other PushSubscription) bool {
	return p.Endpoint == other.Endpoint &&
		p.Keys.P256dh == other.Keys.P256dh &&
		p.Keys.Auth == other.Keys.Auth
}
