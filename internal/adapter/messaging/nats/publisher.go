package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type Publisher struct {
	nc     *nats.Conn
	logger *logger.Logger
}

// envelope wraps every payload with the subject and publish time.
type envelope struct {
	Subject     string    `json:"subject"`
	PublishedAt time.Time `json:"publishedAt"`
	Data        any       `json:"data"`
}

func NewPublisher(cfg config.NATSConfig, serviceName string, log *logger.Logger) (*Publisher, error) {
	log = log.Named("NATSPublisher")
	opts := []nats.Option{
		nats.Name(serviceName),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{nc: nc, logger: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(envelope{Subject: subject, PublishedAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Debug("Published NATS message", zap.String("subject", subject))
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}
