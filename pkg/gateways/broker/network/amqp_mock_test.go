package network

import (
	"github.com/stretchr/testify/mock"
)

type AmqpMock struct {
	mock.Mock
}

func (m *AmqpMock) Start() error {
	return nil
}

func (m *AmqpMock) Stop() error { return nil }

func (m *AmqpMock) OnMessage(msgChan chan InMsg, queueName, exchangeName, key string) error {
	args := m.Called(msgChan, queueName, exchangeName, key)
	return args.Error(0)
}

func (m *AmqpMock) PublishPersistentMessage(exchange, key string, data interface{}, options *MessageOptions) error {
	args := m.Called(exchange, key, data, options)
	return args.Error(0)
}
