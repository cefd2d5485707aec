package scorefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ForAlpha/internal/domain/models"
	drepo "ForAlpha/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a ScoreStream backed by the scoring vendor's WebSocket
// feed. The vendor pushes per-year score revisions as they are recomputed
// from new filings.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	metrics        drepo.Metrics

	conn      *websocket.Conn
	connected bool
}

// New creates a new vendor ScoreStream.
func New(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, metrics drepo.Metrics) drepo.ScoreStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		metrics:        metrics,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("scorefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("scorefeed: connected")
	return nil
}

// Subscribe subscribes to configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("scorefeed not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		log.Printf("scorefeed: subscribed %s", s)
	}
	return nil
}

type feedScore struct {
	Symbol string  `json:"symbol"`
	Metric string  `json:"metric"`
	FY     int     `json:"fy"`
	Value  float64 `json:"value"`
	T      int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedScore `json:"data"`
}

// Read streams ScoreUpdate events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.ScoreUpdate, <-chan error) {
	updates := make(chan *models.ScoreUpdate, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("scorefeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("scorefeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-score frames
					continue
				}
				if m.Type != "scores" {
					continue
				}
				for _, d := range m.Data {
					u := &models.ScoreUpdate{
						Symbol:    d.Symbol,
						Metric:    models.Metric(d.Metric),
						Year:      d.FY,
						Value:     d.Value,
						Source:    "scorefeed",
						Timestamp: d.T / 1000,
					}
					c.dispatch(updates, u)
				}
			}
		}
	}()

	return updates, errs
}

// dispatch hands an update to the consumer, dropping on backpressure. Score
// revisions are slow-moving, so every drop is counted as data loss.
func (c *Client) dispatch(updates chan<- *models.ScoreUpdate, u *models.ScoreUpdate) {
	select {
	case updates <- u:
	default:
		if c.metrics != nil {
			c.metrics.RecordError("scorefeed_drop")
		}
	}
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
