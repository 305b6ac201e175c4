package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/bsb-logistics/ganttboard/core/monitoring"
	coremqtt "github.com/bsb-logistics/ganttboard/core/mqtt"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

// Notifier publishes change notifications with bounded retries.
type Notifier struct {
	cli        pahoClient
	topic      string
	qos        byte
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewNotifier connects a publishing client to the broker.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.SetClientID(cfg.ClientID + "-notifier")
	log := logger.New("mqtt-notifier")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli, err := connect(opts)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		cli:        cli,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// Notify publishes c on the change topic.
func (n *Notifier) Notify(c coremqtt.Change) error {
	if !n.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		token := n.cli.Publish(n.topic, n.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.logger.Debugf("notified change of [%s]", strings.Join(c.VehicleIDs, ","))
			return nil
		}
		n.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < n.maxRetries {
			time.Sleep(n.backoff * time.Duration(1<<attempt))
		}
	}
	monitoring.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": n.topic})
	return fmt.Errorf("notify change: %w", publishErr)
}

// Close gracefully closes the MQTT connection.
func (n *Notifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
