package network

import (
	"errors"
	"testing"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/stretchr/testify/assert"
)

const testExchange = "enose.telemetry"

func createFakeReading() entities.Reading {
	return entities.Reading{
		Timestamp:    123456,
		Sample:       "Daun Kari",
		COMics:       1.5,
		EthanolMics:  2.5,
		VOCMics:      3.5,
		NO2Grove:     0.5,
		EthanolGM:    4,
		VOCGM:        5,
		COGM:         6,
		RelativeTime: 12.5,
	}
}

func TestPublishReading(t *testing.T) {
	amqpMock := new(AmqpMock)
	reading := createFakeReading()
	options := MessageOptions{Sample: reading.Sample}
	message := ReadingMessage{
		Timestamp:    123456,
		Sample:       "Daun Kari",
		RelativeTime: 12.5,
		Values: map[string]float64{
			"co_m": 1.5, "eth_m": 2.5, "voc_m": 3.5, "no2": 0.5, "eth_gm": 4, "voc_gm": 5, "co_gm": 6,
		},
	}

	amqpMock.On("PublishPersistentMessage", testExchange, routingKeyReading, message, &options).Return(nil)

	publisher := NewMsgPublisher(amqpMock, testExchange)
	err := publisher.PublishReading(reading)
	assert.Nil(t, err)
	amqpMock.AssertExpectations(t)
}

func TestPublishReadingWhenBrokerFailsReturnError(t *testing.T) {
	amqpMock := new(AmqpMock)
	reading := createFakeReading()
	options := MessageOptions{Sample: reading.Sample}

	amqpMock.On("PublishPersistentMessage", testExchange, routingKeyReading, NewReadingMessage(reading), &options).Return(errors.New("failed"))

	publisher := NewMsgPublisher(amqpMock, testExchange)
	err := publisher.PublishReading(reading)
	assert.NotNil(t, err)
	amqpMock.AssertExpectations(t)
}

func TestPublishStatus(t *testing.T) {
	amqpMock := new(AmqpMock)
	options := MessageOptions{Expiration: statusExpirationTime}
	status := entities.StatusEvent{MsgType: entities.StatusTypeMotor, Motor: "M1", Speed: 40}
	message := StatusMessage{MsgType: "motor", Motor: "M1", Speed: 40}

	amqpMock.On("PublishPersistentMessage", testExchange, "status.motor", message, &options).Return(nil)

	publisher := NewMsgPublisher(amqpMock, testExchange)
	err := publisher.PublishStatus(status)
	assert.Nil(t, err)
	amqpMock.AssertExpectations(t)
}

func TestStatusRoutingKey(t *testing.T) {
	assert.Equal(t, "status.calib_progress", StatusRoutingKey("calib_progress"))
	assert.Equal(t, "status.unknown", StatusRoutingKey(""))
}
