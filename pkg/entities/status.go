package entities

const (
	StatusTypeStatus        string = "status"
	StatusTypeMotor         string = "motor"
	StatusTypeCalibProgress string = "calib_progress"
)

// CalibrationTotal is the fixed number of calibration steps reported by the device.
const CalibrationTotal = 10

// StatusEvent is an out-of-band device message. Only the fields relevant to
// MsgType are populated; unknown message types carry the raw tag alone.
type StatusEvent struct {
	MsgType      string `json:"msg_type"`
	Message      string `json:"message,omitempty"`
	DeviceStatus string `json:"status,omitempty"`
	Motor        string `json:"motor,omitempty"`
	Speed        int    `json:"speed,omitempty"`
	Progress     int    `json:"progress,omitempty"`
	Total        int    `json:"total,omitempty"`
}

// Known reports whether the message type carries structured fields.
func (s StatusEvent) Known() bool {
	switch s.MsgType {
	case StatusTypeStatus, StatusTypeMotor, StatusTypeCalibProgress:
		return true
	}
	return false
}
