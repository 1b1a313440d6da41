package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdcgrid/ghds/core/model"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

type fakeClient struct {
	topics   []string
	payloads [][]byte
}

func (f *fakeClient) Connect() paho.Token { return fakeToken{} }
func (f *fakeClient) Disconnect(uint)     {}
func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return fakeToken{}
}

func TestPublishScenario(t *testing.T) {
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	defer func() { newMQTTClient = orig }()

	pub, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	defer pub.Close()

	scenario := model.DispatchScenario{
		RunID:      "run-1",
		Date:       time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		Timestamps: []time.Time{time.Now()},
		ZoneDemand: map[string]model.ZoneSeries{
			"west": {Zone: "west", Values: []float64{950}},
		},
		Generators: map[string]model.ZoneSeries{
			"1_1": {Zone: "west", Values: []float64{900}},
		},
	}
	require.NoError(t, pub.PublishScenario(scenario))
	require.Len(t, fake.payloads, 1)
	assert.Equal(t, "ghds/scenario", fake.topics[0])

	var note Notification
	require.NoError(t, json.Unmarshal(fake.payloads[0], &note))
	assert.Equal(t, "run-1", note.RunID)
	assert.Equal(t, "2024-02-14", note.Date)
	assert.Equal(t, 950.0, note.ZonePeaks["west"])
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.NoError(t, Config{Enabled: true, Broker: "tcp://b:1883"}.Validate())
}
