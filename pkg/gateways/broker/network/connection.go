package network

import (
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// connection is the slice of an AMQP client the handler drives. Every
// exchange is a durable topic exchange and every queue is durable.
type connection interface {
	open() error
	declareExchange(name string) error
	bindQueue(queue, exchange, key string) error
	consume(queue string) (<-chan amqp.Delivery, error)
	publish(exchange, key string, data interface{}, options *MessageOptions) error
	close() error
	notifyClose() chan *amqp.Error
}

type AmqpConnection struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAmqpConnection(url string) *AmqpConnection {
	return &AmqpConnection{url: url}
}

// open dials the broker and opens the single channel used for every
// operation.
func (a *AmqpConnection) open() error {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return errors.Wrap(err, "dial broker")
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "open channel")
	}
	a.conn = conn
	a.channel = channel
	return nil
}

func (a *AmqpConnection) declareExchange(name string) error {
	return a.channel.ExchangeDeclare(name, exchangeTypeTopic, durable, autoDelete, internal, noWait, nil)
}

func (a *AmqpConnection) bindQueue(queue, exchange, key string) error {
	if _, err := a.channel.QueueDeclare(queue, durable, autoDelete, exclusive, noWait, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	return errors.Wrap(a.channel.QueueBind(queue, key, exchange, noWait, nil), "bind queue")
}

func (a *AmqpConnection) consume(queue string) (<-chan amqp.Delivery, error) {
	return a.channel.Consume(queue, consumerTag, autoAck, exclusive, noLocal, noWait, nil)
}

func (a *AmqpConnection) publish(exchange, key string, data interface{}, options *MessageOptions) error {
	var headers amqp.Table
	var corrID, expTime string

	if options != nil {
		if options.Sample != "" {
			headers = amqp.Table{"sample": options.Sample}
		}
		corrID = options.CorrelationID
		expTime = options.Expiration
	}

	body, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode JSON message")
	}

	return a.channel.Publish(exchange, key, false, false, amqp.Publishing{
		Headers:       headers,
		ContentType:   contentTypeJSON,
		DeliveryMode:  amqp.Persistent,
		CorrelationId: corrID,
		Body:          body,
		Expiration:    expTime,
	})
}

// close releases the channel and the connection. It is a no-op when the
// connection was never opened or is already closed.
func (a *AmqpConnection) close() error {
	if a.conn == nil || a.conn.IsClosed() {
		return nil
	}
	if a.channel != nil {
		a.channel.Close()
	}
	return a.conn.Close()
}

func (a *AmqpConnection) notifyClose() chan *amqp.Error {
	return a.conn.NotifyClose(make(chan *amqp.Error, 1))
}
