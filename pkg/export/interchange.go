package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

const (
	interchangeVersion    = "v1"
	interchangeAlgorithm  = "none"
	interchangeDeviceName = "E-Nose-System"
	interchangeDeviceType = "CUSTOM"
	interchangeUnits      = "ppm"
	defaultIntervalMs     = 2000
	unknownLabel          = "Unknown"
)

// interchangeSensors names the channels for the analysis platform, in
// canonical channel order.
var interchangeSensors = [entities.ChannelCount]string{
	"co_mics",
	"ethanol_mics",
	"voc_mics",
	"no2_grove",
	"ethanol_grove",
	"voc_grove",
	"co_grove",
}

type interchangeDocument struct {
	Protected interchangeProtected `json:"protected"`
	Signature string               `json:"signature"`
	Payload   interchangePayload   `json:"payload"`
}

type interchangeProtected struct {
	Ver string `json:"ver"`
	Alg string `json:"alg"`
}

type interchangePayload struct {
	DeviceName string               `json:"device_name"`
	DeviceType string               `json:"device_type"`
	IntervalMs int64                `json:"interval_ms"`
	Sensors    []interchangeSensor  `json:"sensors"`
	Values     [][]interchangeValue `json:"values"`
}

type interchangeSensor struct {
	Name  string `json:"name"`
	Units string `json:"units"`
}

// interchangeValue always encodes with a fractional part so the platform
// reads every column as floating point.
type interchangeValue float64

func (v interchangeValue) MarshalJSON() ([]byte, error) {
	value := float64(v)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, errors.Errorf("unsupported sensor value %v", value)
	}
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsRune(text, '.') {
		text += ".0"
	}
	return []byte(text), nil
}

func newInterchangeDocument(readings []entities.Reading) interchangeDocument {
	sensors := make([]interchangeSensor, 0, entities.ChannelCount)
	for _, name := range interchangeSensors {
		sensors = append(sensors, interchangeSensor{Name: name, Units: interchangeUnits})
	}

	values := make([][]interchangeValue, 0, len(readings))
	for _, reading := range readings {
		row := make([]interchangeValue, 0, entities.ChannelCount)
		for _, value := range reading.Values() {
			row = append(row, interchangeValue(value))
		}
		values = append(values, row)
	}

	return interchangeDocument{
		Protected: interchangeProtected{Ver: interchangeVersion, Alg: interchangeAlgorithm},
		Signature: "",
		Payload: interchangePayload{
			DeviceName: interchangeDeviceName,
			DeviceType: interchangeDeviceType,
			IntervalMs: samplingInterval(readings),
			Sensors:    sensors,
			Values:     values,
		},
	}
}

// samplingInterval is the timestamp delta between the first two readings.
func samplingInterval(readings []entities.Reading) int64 {
	if len(readings) < 2 {
		return defaultIntervalMs
	}
	return readings[1].Timestamp - readings[0].Timestamp
}

func interchangeLabel(label, sessionName string) string {
	if label != "" {
		return label
	}
	if sessionName != "" {
		return sessionName
	}
	return unknownLabel
}
