package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/env"
)

// Payload is the notification document delivered to client devices.
type Payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	OrderID string `json:"orderId"`
	StoreID string `json:"storeId"`
	Topic   string `json:"topic"`
}

// BuildOrderPayload templates the notification for an order event. The body
// is assembled from whatever billing details the event carried, with a
// generic phrase when neither name nor total is present.
func BuildOrderPayload(storeID, topic, orderID, billingName, total string) Payload {
	title := "Order update"
	if strings.HasSuffix(topic, "created") {
		title = "New order"
	}
	if orderID != "" {
		title = fmt.Sprintf("%s #%s", title, orderID)
	}

	var parts []string
	if billingName != "" {
		parts = append(parts, billingName)
	}
	if total != "" {
		parts = append(parts, total)
	}
	body := strings.Join(parts, " · ")
	if body == "" {
		body = "Open the app for details"
	}

	return Payload{
		Title:   title,
		Body:    body,
		OrderID: orderID,
		StoreID: storeID,
		Topic:   topic,
	}
}

// ErrPermanentRejection is returned when the push service reports the
// subscription is gone. Pruning is advisory only: callers log it and keep
// the subscription.
var ErrPermanentRejection = fmt.Errorf("subscription permanently rejected")

// Sender delivers one payload to one subscription endpoint.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload Payload) error
}

// WebPushSender signs deliveries with the configured VAPID key pair.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

// NewWebPushSenderFromEnv reads the VAPID configuration. Missing keys are a
// ConfigurationError at send time, not startup, so the rest of the system
// runs without the push feature.
func NewWebPushSenderFromEnv() *WebPushSender {
	return &WebPushSender{
		publicKey:  strings.TrimSpace(env.GetEnv("VAPID_PUBLIC_KEY", "")),
		privateKey: strings.TrimSpace(env.GetEnv("VAPID_PRIVATE_KEY", "")),
		subscriber: strings.TrimSpace(env.GetEnv("VAPID_CONTACT", "")),
	}
}

// Configured reports whether the signing key pair is present.
func (s *WebPushSender) Configured() bool {
	return s.publicKey != "" && s.privateKey != ""
}

func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, payload Payload) error {
	if !s.Configured() {
		return fmt.Errorf("VAPID keys are not configured: %w", apperrors.ErrConfiguration)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrPermanentRejection)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperrors.UpstreamError{StatusCode: resp.StatusCode, Service: "push service"}
	}
	return nil
}
