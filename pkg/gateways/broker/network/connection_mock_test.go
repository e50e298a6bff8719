package network

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

type connectionMock struct {
	mock.Mock
}

func (c *connectionMock) open() error {
	args := c.Called()
	return args.Error(0)
}

func (c *connectionMock) declareExchange(name string) error {
	args := c.Called(name)
	return args.Error(0)
}

func (c *connectionMock) bindQueue(queue, exchange, key string) error {
	args := c.Called(queue, exchange, key)
	return args.Error(0)
}

func (c *connectionMock) consume(queue string) (<-chan amqp.Delivery, error) {
	args := c.Called(queue)
	return args.Get(0).(chan amqp.Delivery), args.Error(1)
}

func (c *connectionMock) publish(exchange, key string, data interface{}, options *MessageOptions) error {
	args := c.Called(exchange, key, data, options)
	return args.Error(0)
}

func (c *connectionMock) close() error {
	args := c.Called()
	return args.Error(0)
}

func (c *connectionMock) notifyClose() chan *amqp.Error {
	args := c.Called()
	return args.Get(0).(chan *amqp.Error)
}
