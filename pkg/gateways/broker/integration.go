package broker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/broker/network"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Integration bundles the broker connection with the forwarder and the
// command subscription.
type Integration struct {
	*Forwarder
	amqp       network.Messaging
	subscriber network.Subscriber
	log        *logrus.Entry
}

func NewIntegration(conf entities.BrokerConfig, log *logrus.Entry) (*Integration, error) {
	amqpConnection := network.NewAmqpConnection(conf.URL)
	amqp := network.NewAMQPHandler(amqpConnection, log)
	if err := amqp.Start(); err != nil {
		log.WithError(err).Errorln("broker connection error")
		return nil, errors.Wrap(err, "start broker integration")
	}
	log.WithField("exchange", conf.Exchange).Infoln("broker connected")

	publisher := network.NewMsgPublisher(amqp, conf.Exchange)
	subscriber := network.NewMsgSubscriber(amqp, conf.Exchange, conf.CommandQueue)
	return newIntegration(conf, amqp, publisher, subscriber, log), nil
}

func newIntegration(conf entities.BrokerConfig, amqp network.Messaging, publisher network.Publisher, subscriber network.Subscriber, log *logrus.Entry) *Integration {
	return &Integration{
		Forwarder:  NewForwarder(conf, publisher, log),
		amqp:       amqp,
		subscriber: subscriber,
		log:        log,
	}
}

// Commands subscribes to the command queue and yields each command text
// until ctx is done.
func (i *Integration) Commands(ctx context.Context) (<-chan string, error) {
	msgChan := make(chan network.InMsg)
	if err := i.subscriber.SubscribeToCommands(msgChan); err != nil {
		return nil, errors.Wrap(err, "subscribe to commands")
	}

	commands := make(chan string)
	go func() {
		defer close(commands)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgChan:
				command := decodeCommand(msg.Body)
				if command == "" {
					i.log.WithField("routing_key", msg.RoutingKey).Debugln("empty command discarded")
					continue
				}
				select {
				case commands <- command:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return commands, nil
}

func (i *Integration) Close() error {
	return i.amqp.Stop()
}

// decodeCommand accepts {"command": "..."} bodies and falls back to the raw
// text for anything else.
func decodeCommand(body []byte) string {
	var message network.CommandMessage
	if err := json.Unmarshal(body, &message); err == nil && message.Command != "" {
		return strings.TrimSpace(message.Command)
	}
	return strings.TrimSpace(string(body))
}
