package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// Subjects for sync lifecycle events.
const (
	SubjectSyncProgress = "sync.progress"
	SubjectSyncComplete = "sync.complete"
	SubjectSyncError    = "sync.error"
)

// SyncProgressEvent is published after each (stock, data type) sync.
type SyncProgressEvent struct {
	RunID     string          `json:"run_id"`
	Symbol    string          `json:"symbol"`
	DataType  models.DataType `json:"data_type"`
	Written   int             `json:"written"`
	Refreshed bool            `json:"refreshed"`
	Timestamp time.Time       `json:"timestamp"`
}

// SyncErrorEvent is published when a (stock, data type) sync fails.
type SyncErrorEvent struct {
	RunID     string          `json:"run_id"`
	Symbol    string          `json:"symbol"`
	DataType  models.DataType `json:"data_type"`
	Error     string          `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
}

// NATSClient publishes sync lifecycle events for downstream consumers.
type NATSClient struct {
	conn   *nats.Conn
	logger *logrus.Entry
	cfg    *config.NATSConfig
}

// NewNATSClient creates a new NATS client
func NewNATSClient(cfg *config.NATSConfig, logger *logrus.Logger) (*NATSClient, error) {
	log := logger.WithField("component", "nats")

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", cfg.URL).Info("Connected to NATS")

	return &NATSClient{
		conn:   conn,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Close drains and closes the connection
func (nc *NATSClient) Close() error {
	if nc.conn == nil {
		return nil
	}
	if err := nc.conn.Drain(); err != nil {
		nc.conn.Close()
		return err
	}
	return nil
}

// IsConnected reports connection state
func (nc *NATSClient) IsConnected() bool {
	return nc.conn != nil && nc.conn.IsConnected()
}

// PublishSyncProgress publishes a per-stock sync result
func (nc *NATSClient) PublishSyncProgress(event *SyncProgressEvent) error {
	event.Timestamp = time.Now()
	return nc.PublishJSON(SubjectSyncProgress, event)
}

// PublishSyncComplete publishes the run summary once a sync run finishes
func (nc *NATSClient) PublishSyncComplete(summary interface{}) error {
	return nc.PublishJSON(SubjectSyncComplete, summary)
}

// PublishSyncError publishes a per-stock sync failure
func (nc *NATSClient) PublishSyncError(event *SyncErrorEvent) error {
	event.Timestamp = time.Now()
	return nc.PublishJSON(SubjectSyncError, event)
}

// PublishJSON publishes a JSON-encoded message
func (nc *NATSClient) PublishJSON(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", subject, err)
	}
	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// SubscribeSyncProgress subscribes to per-stock sync results
func (nc *NATSClient) SubscribeSyncProgress(handler func(*SyncProgressEvent)) (*nats.Subscription, error) {
	return nc.conn.Subscribe(SubjectSyncProgress, func(msg *nats.Msg) {
		var event SyncProgressEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			nc.logger.WithError(err).Warn("Failed to decode sync progress event")
			return
		}
		handler(&event)
	})
}
