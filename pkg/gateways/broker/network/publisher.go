package network

import (
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
)

const (
	routingKeyReading      = "reading"
	routingKeyStatusPrefix = "status."
	statusExpirationTime   = "60000"
)

type Publisher interface {
	PublishReading(reading entities.Reading) error
	PublishStatus(status entities.StatusEvent) error
}

type msgPublisher struct {
	amqp     Messaging
	exchange string
}

func NewMsgPublisher(amqp Messaging, exchange string) Publisher {
	return &msgPublisher{amqp, exchange}
}

func (mp *msgPublisher) PublishReading(reading entities.Reading) error {
	options := MessageOptions{
		Sample: reading.Sample,
	}
	message := NewReadingMessage(reading)
	return mp.amqp.PublishPersistentMessage(mp.exchange, routingKeyReading, message, &options)
}

// PublishStatus routes each status kind under its own key so consumers can
// bind to status.motor or status.# selectively.
func (mp *msgPublisher) PublishStatus(status entities.StatusEvent) error {
	options := MessageOptions{
		Expiration: statusExpirationTime,
	}
	message := NewStatusMessage(status)
	return mp.amqp.PublishPersistentMessage(mp.exchange, StatusRoutingKey(status.MsgType), message, &options)
}

func StatusRoutingKey(msgType string) string {
	if msgType == "" {
		msgType = "unknown"
	}
	return routingKeyStatusPrefix + msgType
}
