package enose

import (
	"context"
	"strings"
	"sync"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/enose/network"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type dialFunc func(ctx context.Context, host string, port int, retries uint64) (network.Connection, error)

// Client owns the connection to the acquisition device and publishes the
// decoded stream on Events in arrival order.
type Client struct {
	log         *logrus.Entry
	classifier  *Classifier
	metrics     *metrics.IngestionMetrics
	dial        dialFunc
	dialRetries uint64
	queue       *eventQueue

	mu    sync.Mutex
	state entities.ConnectionState
	conn  network.Connection
	stop  chan struct{}
	loops sync.WaitGroup

	cancelDial context.CancelFunc
	dialDone   chan struct{}
	closed     bool
}

type ClientOption func(*Client)

func WithMetrics(m *metrics.IngestionMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithDialRetries sets how many times a failed dial is retried before
// Connect gives up.
func WithDialRetries(retries uint64) ClientOption {
	return func(c *Client) {
		c.dialRetries = retries
	}
}

func NewClient(log *logrus.Entry, opts ...ClientOption) *Client {
	c := &Client{
		log:   log,
		dial:  network.Dial,
		queue: newEventQueue(),
		state: entities.Disconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.classifier = NewClassifier(log, c.metrics)
	return c
}

// Events delivers readings, status events and connection state changes.
// The channel is closed by Close after every pending event was delivered,
// so consumers should keep reading until it is closed.
func (c *Client) Events() <-chan entities.Event {
	return c.queue.out
}

func (c *Client) State() entities.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the device and starts the read loop. It blocks for the
// handshake and leaves the client disconnected when the dial fails or a
// Disconnect arrives while dialing.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return entities.ErrClientClosed
	}
	if c.state != entities.Disconnected {
		c.mu.Unlock()
		return entities.ErrAlreadyConnected
	}
	c.state = entities.Connecting
	dialCtx, cancel := context.WithCancel(ctx)
	dialDone := make(chan struct{})
	c.cancelDial = cancel
	c.dialDone = dialDone
	c.mu.Unlock()
	defer close(dialDone)
	defer cancel()

	// a loop that tore itself down after an I/O error may still be exiting
	c.loops.Wait()

	conn, err := c.dial(dialCtx, host, port, c.dialRetries)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelDial = nil
	c.dialDone = nil
	if err == nil && dialCtx.Err() != nil {
		conn.Close()
		err = errors.Wrap(dialCtx.Err(), "connect cancelled")
	}
	if err != nil {
		c.state = entities.Disconnected
		c.metrics.ConnectionError()
		c.log.WithError(err).Errorln("connection to device failed")
		return err
	}

	c.conn = conn
	c.stop = make(chan struct{})
	c.state = entities.Connected
	c.metrics.SetConnected(true)
	c.queue.push(entities.NewConnectionStateEvent(true))
	c.log.WithFields(logrus.Fields{"host": host, "port": port}).Infoln("connected to device")

	c.loops.Add(1)
	go c.readLoop(conn, c.stop)
	return nil
}

// Disconnect stops the read loop and closes the connection. A dial in
// progress is cancelled and waited for. When Disconnect returns the client
// is disconnected and no further event is published.
func (c *Client) Disconnect() {
	c.mu.Lock()
	switch c.state {
	case entities.Connecting:
		c.cancelDial()
		dialDone := c.dialDone
		c.mu.Unlock()
		<-dialDone
		return
	case entities.Connected:
		c.shutdownLocked()
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		return
	}

	c.loops.Wait()
	c.log.Infoln("disconnected from device")
}

// SendCommand writes text as one line to the device. Commands issued while
// disconnected are discarded.
func (c *Client) SendCommand(text string) error {
	c.mu.Lock()
	if c.state != entities.Connected {
		c.mu.Unlock()
		c.log.WithField("command", text).Debugln("discarded command while disconnected")
		return nil
	}
	conn := c.conn
	c.mu.Unlock()

	if err := conn.WriteLine(strings.TrimSpace(text)); err != nil {
		return errors.Wrap(err, "send command")
	}
	return nil
}

// Close disconnects and releases the event channel. A closed client cannot
// connect again.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Disconnect()
	c.queue.close()
}

func (c *Client) shutdownLocked() {
	c.state = entities.Disconnected
	close(c.stop)
	if err := c.conn.Close(); err != nil {
		c.log.WithError(err).Debugln("closing device connection")
	}
	c.conn = nil
	c.metrics.SetConnected(false)
	c.queue.push(entities.NewConnectionStateEvent(false))
}

func (c *Client) readLoop(conn network.Connection, stop chan struct{}) {
	defer c.loops.Done()

	reader := NewFrameReader(conn)
	for {
		line, err := reader.Next()
		if err != nil {
			c.handleReadError(stop, err)
			return
		}
		c.metrics.LineReceived()

		event, ok := c.classifier.Classify(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if !c.publish(stop, event) {
			return
		}
	}
}

// publish hands event to the consumer unless the loop was cancelled.
func (c *Client) publish(stop chan struct{}, event entities.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isClosed(stop) {
		return false
	}
	c.queue.push(event)
	return true
}

func (c *Client) handleReadError(stop chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isClosed(stop) {
		return
	}
	c.metrics.ConnectionError()
	c.log.WithError(err).Warnln("device stream ended, disconnecting")
	c.shutdownLocked()
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
