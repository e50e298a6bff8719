package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeToCommands(t *testing.T) {
	amqpMock := new(AmqpMock)
	msgChan := make(chan InMsg)
	amqpMock.On("OnMessage", msgChan, "enose.commands", testExchange, BindingKeyCommand).Return(nil)
	subscriber := NewMsgSubscriber(amqpMock, testExchange, "enose.commands")
	err := subscriber.SubscribeToCommands(msgChan)
	assert.NoError(t, err)
	amqpMock.AssertExpectations(t)
}

func TestSubscribeToCommandsWhenBindFailsReturnError(t *testing.T) {
	amqpMock := new(AmqpMock)
	msgChan := make(chan InMsg)
	amqpMock.On("OnMessage", msgChan, "enose.commands", testExchange, BindingKeyCommand).Return(errors.New("failed"))
	subscriber := NewMsgSubscriber(amqpMock, testExchange, "enose.commands")
	err := subscriber.SubscribeToCommands(msgChan)
	assert.Error(t, err)
}
