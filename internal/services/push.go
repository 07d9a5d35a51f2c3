package services

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Pusher sends mobile push notifications
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// NoopPusher drops every notification
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, string, string, string) error { return nil }

// APNsPusher delivers notifications through Apple Push Notification service
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher loads a .p12 certificate and creates an APNs client
func NewAPNsPusher(certFile, certPassword, topic string, production bool) (*APNsPusher, error) {
	cert, err := certificate.FromP12File(certFile, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// Push sends an alert notification to a single device
func (p *APNsPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := p.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
