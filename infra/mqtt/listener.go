package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/bsb-logistics/ganttboard/core/monitoring"
	coremqtt "github.com/bsb-logistics/ganttboard/core/mqtt"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

// Board is refreshed when a change notification arrives.
type Board interface {
	FetchVehicles(ctx context.Context) error
	RefreshVehicles(ctx context.Context, ids []string) error
}

// Listener subscribes to change notifications and refreshes the board.
type Listener struct {
	cli     pahoClient
	board   Board
	topic   string
	qos     byte
	timeout time.Duration
	logger  logger.Logger
}

// NewListener connects to the broker and subscribes on every (re)connect.
func NewListener(cfg Config, b Board) (*Listener, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt-listener")
	l := &Listener{board: b, topic: cfg.Topic, qos: cfg.QoS, timeout: 10 * time.Second, logger: log}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected, subscribing to %s", l.topic)
		if token := c.Subscribe(l.topic, l.qos, l.onChange); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	cli, err := connect(opts)
	if err != nil {
		return nil, err
	}
	l.cli = cli
	return l, nil
}

func (l *Listener) onChange(_ paho.Client, msg paho.Message) {
	var ch coremqtt.Change
	if err := json.Unmarshal(msg.Payload(), &ch); err != nil {
		l.logger.Errorf("failed to decode change: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	var err error
	if len(ch.VehicleIDs) == 0 {
		err = l.board.FetchVehicles(ctx)
	} else {
		err = l.board.RefreshVehicles(ctx, ch.VehicleIDs)
	}
	if err != nil {
		l.logger.Errorf("refresh after change: %v", err)
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "topic": l.topic})
	}
}

// Close gracefully closes the MQTT connection.
func (l *Listener) Close() {
	if l.cli != nil && l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
}
