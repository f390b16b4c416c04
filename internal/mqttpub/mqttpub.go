// Package mqttpub publishes decode results over MQTT. Grounded on the
// teacher's mqtt_publisher.go: paho.mqtt.golang client with TLS support,
// auto-reconnect, and connection-event logging, adapted from generic
// metrics publishing to one-decode-per-message JSON publication.
package mqttpub

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/cwsl/wsprgo/internal/wspr"
)

// TLSConfig mirrors the teacher's MQTTTLSConfig.
type TLSConfig struct {
	Enabled    bool
	CACert     string
	ClientCert string
	ClientKey  string
}

// Config configures the Publisher.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	TLS      TLSConfig
}

// Publisher publishes wspr.Decode results as JSON messages.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// DecodeMessage is the JSON payload published for one decode.
type DecodeMessage struct {
	Timestamp      int64   `json:"timestamp"`
	Callsign       string  `json:"callsign"`
	Grid           string  `json:"grid"`
	PowerDBm       int     `json:"power_dbm"`
	SNRDb          float64 `json:"snr_db"`
	FreqOffsetHz   float64 `json:"freq_offset_hz"`
	TimeOffsetS    float64 `json:"time_offset_s"`
	DriftHzPerS    float64 `json:"drift_hz_s"`
	DialFreqMHz    float64 `json:"dial_freq_mhz"`
	TxFrequencyMHz float64 `json:"tx_frequency_mhz"`
	MessageText    string  `json:"message_text"`
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "wsprgo_" + hex.EncodeToString(b)
}

func loadTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	tlsConf := &tls.Config{}
	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("mqttpub: read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("mqttpub: parse CA certificate")
		}
		tlsConf.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("mqttpub: load client certificate: %w", err)
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}
	return tlsConf, nil
}

// New connects to the configured broker and returns a ready Publisher.
func New(cfg Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = generateClientID()
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	if cfg.TLS.Enabled {
		tlsConf, err := loadTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("mqttpub: %w", err)
		}
		opts.SetTLSConfig(tlsConf)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("MQTT: connected to broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("MQTT: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqttpub: connect to %s: %w", cfg.Broker, token.Error())
	}
	log.Printf("MQTT: connected to broker %s", cfg.Broker)

	topic := cfg.Topic
	if topic == "" {
		topic = "wspr/decodes"
	}
	return &Publisher{client: client, topic: topic}, nil
}

// PublishDecode serialises d to JSON and publishes it on the configured
// topic at QoS 0 (best-effort; a dropped decode event is not worth
// retrying against a live daemon producing a new one every two minutes).
func (p *Publisher) PublishDecode(d wspr.Decode, ts time.Time) error {
	msg := DecodeMessage{
		Timestamp:      ts.Unix(),
		Callsign:       d.Callsign,
		Grid:           d.Grid,
		PowerDBm:       d.PowerDBm,
		SNRDb:          d.SNRDb,
		FreqOffsetHz:   d.FreqOffsetHz,
		TimeOffsetS:    d.TimeOffsetS,
		DriftHzPerS:    d.DriftHzPerS,
		DialFreqMHz:    d.DialFreqMHz,
		TxFrequencyMHz: d.TxFrequencyMHz,
		MessageText:    d.MessageText,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mqttpub: marshal decode: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqttpub: publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
