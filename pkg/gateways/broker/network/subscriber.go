package network

const BindingKeyCommand = "command"

type Subscriber interface {
	SubscribeToCommands(msgChan chan InMsg) error
}

type msgSubscriber struct {
	amqp     Messaging
	exchange string
	queue    string
}

func NewMsgSubscriber(amqp Messaging, exchange, queue string) Subscriber {
	return &msgSubscriber{amqp, exchange, queue}
}

func (ms *msgSubscriber) SubscribeToCommands(msgChan chan InMsg) error {
	return ms.amqp.OnMessage(msgChan, ms.queue, ms.exchange, BindingKeyCommand)
}
