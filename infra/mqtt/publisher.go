// Package mqtt publishes scenario-completion notifications for downstream
// consumers (dashboards, archive jobs). Publishing is optional and never on
// the critical path: a broker outage must not fail a completed run.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/acdcgrid/ghds/core/model"
	"github.com/acdcgrid/ghds/infra/logger"
)

// Config defines the connection parameters for the scenario publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "ghds-publisher"
	}
	if c.Topic == "" {
		c.Topic = "ghds/scenario"
	}
}

// Validate checks mandatory fields for an enabled publisher.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when publishing is enabled")
	}
	return nil
}

// ScenarioPublisher announces completed scenarios.
type ScenarioPublisher interface {
	PublishScenario(s model.DispatchScenario) error
	Close()
}

// Notification is the published payload: a summary, not the full series.
type Notification struct {
	RunID      string             `json:"run_id"`
	Date       string             `json:"date"`
	Timesteps  int                `json:"timesteps"`
	ZonePeaks  map[string]float64 `json:"zone_peaks_mw"`
	Generators []string           `json:"generators"`
	Published  time.Time          `json:"published"`
}

// pahoClient narrows the Paho client surface the publisher needs.
type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoPublisher implements ScenarioPublisher using Eclipse Paho.
type PahoPublisher struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// PublishScenario publishes the completion notification.
func (p *PahoPublisher) PublishScenario(s model.DispatchScenario) error {
	peaks := make(map[string]float64, len(s.ZoneDemand))
	for zone, series := range s.ZoneDemand {
		peaks[zone] = series.Peak()
	}
	gens := make([]string, 0, len(s.Generators))
	for id := range s.Generators {
		gens = append(gens, id)
	}
	payload, err := json.Marshal(Notification{
		RunID:      s.RunID,
		Date:       s.Date.Format("2006-01-02"),
		Timesteps:  len(s.Timestamps),
		ZonePeaks:  peaks,
		Generators: gens,
		Published:  time.Now(),
	})
	if err != nil {
		return err
	}
	if token := p.cli.Publish(p.topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	p.log.Infof("scenario %s published to %s", s.RunID, p.topic)
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	p.cli.Disconnect(250)
}

// NopPublisher discards notifications. Used when publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishScenario(model.DispatchScenario) error { return nil }
func (NopPublisher) Close()                                       {}
