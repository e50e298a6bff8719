package monitor

import (
	"context"
	"sync"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/session"
	"github.com/sirupsen/logrus"
)

type EventSource interface {
	Events() <-chan entities.Event
}

type CommandSender interface {
	SendCommand(text string) error
}

// Transmitter receives every reading and status event after it was recorded.
type Transmitter interface {
	Transmit(reading entities.Reading) error
	PublishStatus(status entities.StatusEvent) error
}

type Option func(*Monitor)

func WithTransmitter(t Transmitter) Option {
	return func(m *Monitor) {
		m.transmitter = t
	}
}

// WithEventHook registers fn to observe every event after the monitor
// handled it. fn runs on the consumer goroutine.
func WithEventHook(fn func(entities.Event)) Option {
	return func(m *Monitor) {
		m.onEvent = fn
	}
}

// Monitor is the single consumer of the ingestion events. It owns the
// recorder; other goroutines reach it only through Do.
type Monitor struct {
	source      EventSource
	log         *logrus.Entry
	transmitter Transmitter
	onEvent     func(entities.Event)

	mu            sync.Mutex
	recorder      *session.Recorder
	device        DeviceStatus
	connected     bool
	statusHandler statusHandler
}

func New(source EventSource, recorder *session.Recorder, log *logrus.Entry, opts ...Option) *Monitor {
	m := &Monitor{
		source:   source,
		recorder: recorder,
		log:      log,
		device: DeviceStatus{
			MotorSpeeds:      map[string]int{},
			CalibrationTotal: entities.CalibrationTotal,
		},
	}
	m.statusHandler = newStatusHandlerChain(&m.device, log)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run consumes events until the source closes its channel or ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	events := m.source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			m.handle(event)
		}
	}
}

// Do runs fn with exclusive access to the recorder.
func (m *Monitor) Do(fn func(*session.Recorder)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.recorder)
}

func (m *Monitor) DeviceStatus() DeviceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device.copy()
}

func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// RelayCommands forwards every command to sender until commands closes or
// ctx is done. Failed writes are logged and do not stop the relay.
func (m *Monitor) RelayCommands(ctx context.Context, commands <-chan string, sender CommandSender) {
	for {
		select {
		case <-ctx.Done():
			return
		case command, ok := <-commands:
			if !ok {
				return
			}
			if err := sender.SendCommand(command); err != nil {
				m.log.WithError(err).WithField("command", command).Errorln("relay command")
				continue
			}
			m.log.WithField("command", command).Infoln("command relayed")
		}
	}
}

func (m *Monitor) handle(event entities.Event) {
	switch event.Kind {
	case entities.EventReading:
		m.handleReading(event.Reading)
	case entities.EventStatus:
		m.handleStatus(event.Status)
	case entities.EventConnectionState:
		m.handleConnectionState(event.Connected)
	}
	if m.onEvent != nil {
		m.onEvent(event)
	}
}

func (m *Monitor) handleReading(reading entities.Reading) {
	m.mu.Lock()
	stored := m.recorder.AddReading(reading)
	m.mu.Unlock()

	if m.transmitter != nil {
		// failures are logged by the transmitter
		_ = m.transmitter.Transmit(stored)
	}
}

func (m *Monitor) handleStatus(status entities.StatusEvent) {
	m.mu.Lock()
	m.statusHandler.execute(status)
	m.mu.Unlock()

	if m.transmitter != nil {
		_ = m.transmitter.PublishStatus(status)
	}
}

func (m *Monitor) handleConnectionState(connected bool) {
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()
	m.log.WithField("connected", connected).Infoln("device connection changed")
}
