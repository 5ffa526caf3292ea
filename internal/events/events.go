package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Event types emitted on the checkout topic.
const (
	TransactionPending = "transaction.pending"
	TransactionSuccess = "transaction.success"
	TransactionFailed  = "transaction.failed"
)

type Event struct {
	Type      string          `json:"type"`
	Reference string          `json:"reference"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	At        time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Kafka writes events as JSON keyed by transaction reference, so every status
// change of one transaction lands on the same partition in order.
type Kafka struct {
	w *kafka.Writer
}

// Brokers splits a comma separated broker list, dropping blanks.
func Brokers(csv string) []string {
	out := []string{}
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{Key: []byte(e.Reference), Value: data, Time: e.At})
}

func (k *Kafka) Close() error { return k.w.Close() }

// New returns a Kafka publisher when brokers are configured and Nop otherwise.
func New(brokersCSV, topic string) Publisher {
	brokers := Brokers(brokersCSV)
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafka(brokers, topic)
}
