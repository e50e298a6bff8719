package monitor

import (
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/sirupsen/logrus"
)

// DeviceStatus is the latest out-of-band state reported by the device.
type DeviceStatus struct {
	Message             string
	Status              string
	MotorSpeeds         map[string]int
	CalibrationProgress int
	CalibrationTotal    int
}

func (d DeviceStatus) copy() DeviceStatus {
	speeds := make(map[string]int, len(d.MotorSpeeds))
	for motor, speed := range d.MotorSpeeds {
		speeds[motor] = speed
	}
	d.MotorSpeeds = speeds
	return d
}

type statusHandler interface {
	execute(entities.StatusEvent)
	setNext(statusHandler)
}

type baseStatus struct {
	next   statusHandler
	device *DeviceStatus
	log    *logrus.Entry
}

func (bs *baseStatus) execute(status entities.StatusEvent) {}

func (bs *baseStatus) setNext(next statusHandler) {
	bs.next = next
}

type deviceStatusHandler struct {
	baseStatus
}

func (sh *deviceStatusHandler) execute(status entities.StatusEvent) {
	if status.MsgType == entities.StatusTypeStatus {
		sh.device.Message = status.Message
		sh.device.Status = status.DeviceStatus
		sh.log.WithField("status", status.DeviceStatus).Infoln(status.Message)
	} else {
		sh.next.execute(status)
	}
}

type motorStatusHandler struct {
	baseStatus
}

func (sh *motorStatusHandler) execute(status entities.StatusEvent) {
	if status.MsgType == entities.StatusTypeMotor {
		sh.device.MotorSpeeds[status.Motor] = status.Speed
		sh.log.Infof("Motor %s: %d%%", status.Motor, status.Speed)
	} else {
		sh.next.execute(status)
	}
}

type calibrationStatusHandler struct {
	baseStatus
}

func (sh *calibrationStatusHandler) execute(status entities.StatusEvent) {
	if status.MsgType == entities.StatusTypeCalibProgress {
		sh.device.CalibrationProgress = status.Progress
		sh.device.CalibrationTotal = status.Total
		sh.log.Infof("Calibration %d/%d", status.Progress, status.Total)
	} else {
		sh.next.execute(status)
	}
}

type unknownStatusHandler struct {
	baseStatus
}

func (sh *unknownStatusHandler) execute(status entities.StatusEvent) {
	sh.log.WithField("msg_type", status.MsgType).Debugln("unhandled status message")
}

func newStatusHandlerChain(device *DeviceStatus, log *logrus.Entry) statusHandler {
	base := baseStatus{device: device, log: log}
	handlers := []statusHandler{
		&deviceStatusHandler{base},
		&motorStatusHandler{base},
		&calibrationStatusHandler{base},
		&unknownStatusHandler{base},
	}
	for i := 0; i < len(handlers)-1; i++ {
		handlers[i].setNext(handlers[i+1])
	}
	return handlers[0]
}
