package mocks

import (
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/broker/network"
	"github.com/stretchr/testify/mock"
)

type MessagingMock struct {
	mock.Mock
}

func (m *MessagingMock) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MessagingMock) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MessagingMock) OnMessage(msgChan chan network.InMsg, queueName, exchangeName, key string) error {
	args := m.Called(msgChan, queueName, exchangeName, key)
	return args.Error(0)
}

func (m *MessagingMock) PublishPersistentMessage(exchange, key string, data interface{}, options *network.MessageOptions) error {
	args := m.Called(exchange, key, data, options)
	return args.Error(0)
}
