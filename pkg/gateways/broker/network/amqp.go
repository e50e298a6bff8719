package network

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	exchangeTypeTopic = "topic"
	contentTypeJSON   = "application/json"
	durable           = true
	autoDelete        = false
	exclusive         = false
	noWait            = false
	internal          = false
	autoAck           = true
	noLocal           = false
	consumerTag       = ""
)

var ErrBrokerUnavailable = errors.New("broker connection unavailable")

type Messaging interface {
	Start() error
	Stop() error
	OnMessage(msgChan chan InMsg, queueName, exchangeName, key string) error
	PublishPersistentMessage(exchange, key string, data interface{}, options *MessageOptions) error
}

type subscription struct {
	msgChan      chan InMsg
	queueName    string
	exchangeName string
	key          string
}

type amqpHandler struct {
	conn              connection
	log               *logrus.Entry
	mu                sync.Mutex
	ready             bool
	declaredExchanges map[string]struct{}
	subscriptions     []subscription
	done              chan struct{}
	stopOnce          sync.Once
	startBackOff      func() backoff.BackOff
	reconnectBackOff  func() backoff.BackOff
}

func NewAMQPHandler(conn connection, log *logrus.Entry) Messaging {
	return &amqpHandler{
		conn:              conn,
		log:               log,
		declaredExchanges: make(map[string]struct{}),
		done:              make(chan struct{}),
		startBackOff:      func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		reconnectBackOff:  newReconnectionBackOff,
	}
}

// randomized interval = RetryInterval * (random value in range [1 - RandomizationFactor, 1 + RandomizationFactor])
func newReconnectionBackOff() backoff.BackOff {
	reconnectionBackOff := backoff.NewExponentialBackOff()
	reconnectionBackOff.InitialInterval = 30 * time.Second
	reconnectionBackOff.MaxInterval = 5 * time.Minute
	reconnectionBackOff.Multiplier = 1.7
	reconnectionBackOff.MaxElapsedTime = 0
	return reconnectionBackOff
}

func (a *amqpHandler) Start() error {
	err := backoff.Retry(a.connect, a.startBackOff())
	if err != nil {
		return errors.Wrap(err, "connect to broker")
	}
	go a.notifyWhenClosed()
	return nil
}

func (a *amqpHandler) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		close(a.done)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.ready = false
		err = a.conn.close()
	})
	return err
}

func (a *amqpHandler) OnMessage(msgChan chan InMsg, queueName, exchangeName, key string) error {
	sub := subscription{msgChan, queueName, exchangeName, key}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return ErrBrokerUnavailable
	}
	if err := a.subscribe(sub); err != nil {
		return err
	}
	a.subscriptions = append(a.subscriptions, sub)
	return nil
}

func (a *amqpHandler) PublishPersistentMessage(exchange, key string, data interface{}, options *MessageOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return ErrBrokerUnavailable
	}

	//Reduces communication with the AMQP server by avoiding redeclaring an exchange.
	if err := a.declareExchangeOnce(exchange); err != nil {
		return err
	}

	err := a.conn.publish(exchange, key, data, options)
	return errors.Wrap(err, "publish message in channel")
}

func (a *amqpHandler) connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.conn.open(); err != nil {
		return err
	}
	a.ready = true
	return nil
}

func (a *amqpHandler) declareExchangeOnce(exchange string) error {
	if _, ok := a.declaredExchanges[exchange]; ok {
		return nil
	}
	if err := a.conn.declareExchange(exchange); err != nil {
		return errors.Wrap(err, "declare exchange")
	}
	a.declaredExchanges[exchange] = struct{}{}
	return nil
}

func (a *amqpHandler) subscribe(sub subscription) error {
	if err := a.declareExchangeOnce(sub.exchangeName); err != nil {
		return err
	}
	if err := a.conn.bindQueue(sub.queueName, sub.exchangeName, sub.key); err != nil {
		return err
	}
	deliveries, err := a.conn.consume(sub.queueName)
	if err != nil {
		return errors.Wrap(err, "consume queue")
	}
	go a.convertDeliveryToInMsg(deliveries, sub.msgChan)
	return nil
}

func (a *amqpHandler) notifyWhenClosed() {
	errReason := <-a.conn.notifyClose()
	if errReason == nil {
		// Closed by Stop.
		return
	}

	a.mu.Lock()
	a.ready = false
	a.mu.Unlock()
	a.log.WithError(errReason).Warnln("broker connection lost")

	reconnection := func() error {
		select {
		case <-a.done:
			return backoff.Permanent(ErrBrokerUnavailable)
		default:
		}
		return a.connect()
	}
	notify := func(err error, next time.Duration) {
		a.log.WithError(err).Warnf("broker reconnection failed, will retry after %v", next)
	}
	if err := backoff.RetryNotify(reconnection, a.reconnectBackOff(), notify); err != nil {
		return
	}
	a.log.Infoln("broker reconnection was successful")

	a.restoreSubscriptions()
	go a.notifyWhenClosed()
}

func (a *amqpHandler) restoreSubscriptions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.declaredExchanges = make(map[string]struct{})
	for _, sub := range a.subscriptions {
		if err := a.subscribe(sub); err != nil {
			a.log.WithError(err).WithField("queue", sub.queueName).Errorln("restore subscription")
		}
	}
}

func (a *amqpHandler) convertDeliveryToInMsg(deliveries <-chan amqp.Delivery, outMsg chan InMsg) {
	for d := range deliveries {
		msg := InMsg{d.Exchange, d.RoutingKey, d.CorrelationId, d.Headers, d.Body}
		select {
		case outMsg <- msg:
		case <-a.done:
			return
		}
	}
}
