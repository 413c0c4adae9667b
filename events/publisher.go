package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const TypeTransactionCommitted = "transaction.committed"

// TransactionCommitted is the payload published after every committed
// deposit or transfer.
type TransactionCommitted struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	ReceiverID    string    `json:"receiver_id"`
	Amount        int64     `json:"amount"`
	Deposit       bool      `json:"deposit"`
	CommittedAt   time.Time `json:"committed_at"`
}

func NewTransactionCommitted(tx model.Transaction) TransactionCommitted {
	return TransactionCommitted{
		Type:          TypeTransactionCommitted,
		TransactionID: tx.ID,
		SenderID:      tx.SenderID,
		ReceiverID:    tx.ReceiverID,
		Amount:        tx.Amount,
		Deposit:       tx.IsDeposit(),
		CommittedAt:   tx.CreatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher returns an asynchronous publisher. Delivery failures are
// logged and never reach the ledger.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = TypeTransactionCommitted
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Log.WithError(err).WithField("messages", len(messages)).Error("Failed to deliver transaction events")
				}
			},
		},
	}
}

// PublishTransaction keys the message by transaction id.
func (p *KafkaPublisher) PublishTransaction(ctx context.Context, tx model.Transaction) error {
	data, err := json.Marshal(NewTransactionCommitted(tx))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeTransactionCommitted)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", tx.ID, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
	}).Debug("Transaction event queued")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, model.Transaction) error { return nil }
