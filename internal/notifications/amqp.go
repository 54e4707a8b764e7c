package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ecommerce-platform/internal/models"
)

// AMQPNotifier publishes purchase confirmations to a RabbitMQ queue for a
// downstream delivery worker.
type AMQPNotifier struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

// purchaseMessage is the queue payload for one confirmed purchase
type purchaseMessage struct {
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	TicketCode string         `json:"ticket_code"`
	Amount     int            `json:"amount"`
	Ticket     *models.Ticket `json:"ticket"`
	SentAt     time.Time      `json:"sent_at"`
}

// NewAMQPNotifier connects to RabbitMQ and declares the target queue
func NewAMQPNotifier(url, queueName string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: channel, queueName: queueName}, nil
}

// Send publishes the confirmation message
func (n *AMQPNotifier) Send(ctx context.Context, email, name string, ticket *models.Ticket) error {
	body, err := json.Marshal(purchaseMessage{
		Email:      email,
		Name:       name,
		TicketCode: ticket.Code,
		Amount:     ticket.Amount,
		Ticket:     ticket,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = n.channel.PublishWithContext(ctx,
		"",          // exchange
		n.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish confirmation: %w", err)
	}
	return nil
}

// Close shuts down the channel and connection
func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return err
	}
	return n.conn.Close()
}
