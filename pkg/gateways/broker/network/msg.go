package network

import "github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"

type InMsg struct {
	Exchange      string
	RoutingKey    string
	CorrelationID string
	Headers       map[string]interface{}
	Body          []byte
}

// MessageOptions represents the message publishing options
type MessageOptions struct {
	Sample        string
	CorrelationID string
	Expiration    string
}

type ReadingMessage struct {
	Timestamp    int64              `json:"timestamp"`
	Sample       string             `json:"sample"`
	RelativeTime float64            `json:"relative_time"`
	Values       map[string]float64 `json:"values"`
}

type StatusMessage struct {
	MsgType      string `json:"msg_type"`
	Message      string `json:"message,omitempty"`
	DeviceStatus string `json:"status,omitempty"`
	Motor        string `json:"motor,omitempty"`
	Speed        int    `json:"speed,omitempty"`
	Progress     int    `json:"progress,omitempty"`
	Total        int    `json:"total,omitempty"`
}

type CommandMessage struct {
	Command string `json:"command"`
}

func NewReadingMessage(reading entities.Reading) ReadingMessage {
	values := make(map[string]float64, entities.ChannelCount)
	for i, value := range reading.Values() {
		values[entities.Channels[i]] = value
	}
	return ReadingMessage{
		Timestamp:    reading.Timestamp,
		Sample:       reading.Sample,
		RelativeTime: reading.RelativeTime,
		Values:       values,
	}
}

func NewStatusMessage(status entities.StatusEvent) StatusMessage {
	return StatusMessage{
		MsgType:      status.MsgType,
		Message:      status.Message,
		DeviceStatus: status.DeviceStatus,
		Motor:        status.Motor,
		Speed:        status.Speed,
		Progress:     status.Progress,
		Total:        status.Total,
	}
}
