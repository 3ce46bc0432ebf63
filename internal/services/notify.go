package services

import (
	"fmt"

	"cardquest/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Notifier delivers push notifications to a device. Implementations are
// best-effort; callers log failures and move on.
type Notifier interface {
	Push(deviceToken, title, body string) error
}

// NoopNotifier is used when push is not configured.
type NoopNotifier struct{}

// Push does nothing
func (NoopNotifier) Push(deviceToken, title, body string) error { return nil }

// APNSNotifier sends pushes through Apple's push service.
type APNSNotifier struct {
	client *apns2.Client
	topic  string
}

// NewNotifier builds a notifier from config: APNs when enabled, no-op
// otherwise.
func NewNotifier(cfg config.APNSConfig) (Notifier, error) {
	if !cfg.Enabled {
		return NoopNotifier{}, nil
	}

	cert, err := certificate.FromP12File(cfg.CertPath, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSNotifier{client: client, topic: cfg.Topic}, nil
}

// Push sends a notification to a device token
func (n *APNSNotifier) Push(deviceToken, title, body string) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := n.client.Push(notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}

	log.Debug().Str("apns_id", res.ApnsID).Msg("Push sent")
	return nil
}
