// Package bus republishes matched trade events onto NATS so
// downstream consumers (market-data feeds, risk, reporting) never need to
// poll an Engine directly.
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/segmentio/ksuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/aowss/orderbook/pkg/matchcore"
)

// TradeMessage is the JSON payload published for one maker fill.
type TradeMessage struct {
	Symbol          string `json:"symbol"`
	EventID         string `json:"event_id"`
	MakerOrderID    uint64 `json:"maker_order_id"`
	MakerUID        uint64 `json:"maker_uid"`
	Price           int64  `json:"price"`
	ReserveBidPrice int64  `json:"reserve_bid_price"`
	Volume          uint64 `json:"volume"`
	MakerCompleted  bool   `json:"maker_completed"`
}

// Publisher republishes CommandResponse trade events to one configured NATS
// subject (the symbol travels in each message's payload), wrapped in a
// circuit breaker so that once publishes keep failing, further publish
// calls are rejected immediately instead of reaching the broker.
type Publisher struct {
	inner   message.Publisher
	breaker *gobreaker.CircuitBreaker
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to natsURL and publishes every message to subject.
func NewPublisher(natsURL, subject string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wmLogger := watermill.NewStdLogger(false, false)

	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         natsURL,
		NatsOptions: nil,
		Marshaler:   &nats.GobMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bus.publisher." + subject,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("event bus circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Publisher{inner: publisher, breaker: breaker, subject: subject, logger: logger}, nil
}

// PublishTrades republishes every trade event in resp to the publisher's
// subject, tagged with symbol. A single failed publish does not abort the
// remaining trades;
// each one goes through the breaker independently.
func (p *Publisher) PublishTrades(ctx context.Context, symbol string, resp matchcore.CommandResponse) {
	for _, t := range resp.Trades {
		msg := TradeMessage{
			Symbol:          symbol,
			EventID:         ksuid.New().String(),
			MakerOrderID:    t.MakerOrderID,
			MakerUID:        t.MakerUID,
			Price:           t.Price,
			ReserveBidPrice: t.ReserveBidPrice,
			Volume:          t.Volume,
			MakerCompleted:  t.MakerCompleted,
		}
		if err := p.publish(msg); err != nil {
			p.logger.Error("failed to publish trade event",
				zap.String("symbol", symbol), zap.Uint64("maker_order_id", t.MakerOrderID), zap.Error(err))
		}
	}
}

func (p *Publisher) publish(msg TradeMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wmMsg := message.NewMessage(msg.EventID, payload)
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.inner.Publish(p.subject, wmMsg)
	})
	return err
}

// Close releases the underlying NATS connection.
func (p *Publisher) Close() error { return p.inner.Close() }
