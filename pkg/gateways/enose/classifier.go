package enose

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	PrefixData   = "DATA:"
	PrefixStatus = "STATUS:"
)

var errDecode = errors.New("malformed payload")

type payloadDecoder func(payload string) (entities.Event, error)

type prefixDecoder struct {
	prefix string
	decode payloadDecoder
}

// Classifier turns a trimmed line into a typed event according to its tag.
type Classifier struct {
	decoders []prefixDecoder
	log      *logrus.Entry
	metrics  *metrics.IngestionMetrics
}

// NewClassifier builds a classifier; m may be nil.
func NewClassifier(log *logrus.Entry, m *metrics.IngestionMetrics) *Classifier {
	return &Classifier{
		decoders: []prefixDecoder{
			{prefix: PrefixData, decode: decodeReading},
			{prefix: PrefixStatus, decode: decodeStatus},
		},
		log:     log,
		metrics: m,
	}
}

// Classify returns the event carried by line. Untagged lines and payloads
// that fail to decode yield no event.
func (c *Classifier) Classify(line string) (entities.Event, bool) {
	for _, d := range c.decoders {
		if !strings.HasPrefix(line, d.prefix) {
			continue
		}
		event, err := d.decode(line[len(d.prefix):])
		if err != nil {
			c.metrics.LineDropped()
			c.log.WithError(err).Debugf("dropped %s line", strings.TrimSuffix(d.prefix, ":"))
			return entities.Event{}, false
		}
		c.metrics.EventDecoded(event.Kind)
		return event, true
	}
	return entities.Event{}, false
}

type readingPayload struct {
	Timestamp   *json.Number `json:"timestamp"`
	Sample      *string      `json:"sample"`
	COMics      *float64     `json:"co_m"`
	EthanolMics *float64     `json:"eth_m"`
	VOCMics     *float64     `json:"voc_m"`
	NO2Grove    *float64     `json:"no2"`
	EthanolGM   *float64     `json:"eth_gm"`
	VOCGM       *float64     `json:"voc_gm"`
	COGM        *float64     `json:"co_gm"`
}

type statusPayload struct {
	MsgType  *string  `json:"msg_type"`
	Msg      *string  `json:"msg"`
	Message  *string  `json:"message"`
	Status   *string  `json:"status"`
	Motor    *string  `json:"motor"`
	Speed    *float64 `json:"speed"`
	Progress *float64 `json:"progress"`
	Current  *float64 `json:"current"`
}

func decodeObject(payload string, target interface{}) error {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return errors.Wrap(errDecode, "payload is not an object")
	}
	if err := json.Unmarshal([]byte(trimmed), target); err != nil {
		return errors.Wrap(errDecode, err.Error())
	}
	return nil
}

func decodeReading(payload string) (entities.Event, error) {
	var p readingPayload
	if err := decodeObject(payload, &p); err != nil {
		return entities.Event{}, err
	}
	timestamp, err := timestampOrZero(p.Timestamp)
	if err != nil {
		return entities.Event{}, err
	}
	return entities.NewReadingEvent(entities.Reading{
		Timestamp:   timestamp,
		Sample:      stringOrEmpty(p.Sample),
		COMics:      floatOrZero(p.COMics),
		EthanolMics: floatOrZero(p.EthanolMics),
		VOCMics:     floatOrZero(p.VOCMics),
		NO2Grove:    floatOrZero(p.NO2Grove),
		EthanolGM:   floatOrZero(p.EthanolGM),
		VOCGM:       floatOrZero(p.VOCGM),
		COGM:        floatOrZero(p.COGM),
	}), nil
}

func decodeStatus(payload string) (entities.Event, error) {
	var p statusPayload
	if err := decodeObject(payload, &p); err != nil {
		return entities.Event{}, err
	}
	status := entities.StatusEvent{MsgType: stringOrEmpty(p.MsgType)}
	switch status.MsgType {
	case entities.StatusTypeStatus:
		status.Message = stringOrEmpty(p.Msg)
		if status.Message == "" {
			status.Message = stringOrEmpty(p.Message)
		}
		status.DeviceStatus = stringOrEmpty(p.Status)
	case entities.StatusTypeMotor:
		status.Motor = stringOrEmpty(p.Motor)
		status.Speed = int(floatOrZero(p.Speed))
	case entities.StatusTypeCalibProgress:
		progress := p.Progress
		if progress == nil {
			progress = p.Current
		}
		status.Progress = int(floatOrZero(progress))
		status.Total = entities.CalibrationTotal
	}
	return entities.NewStatusEvent(status), nil
}

func timestampOrZero(n *json.Number) (int64, error) {
	if n == nil {
		return 0, nil
	}
	if value, err := n.Int64(); err == nil {
		return value, nil
	}
	// float64(math.MaxInt64) rounds up to 2^63, hence >=.
	value, err := n.Float64()
	if err != nil || value != math.Trunc(value) || value >= math.MaxInt64 || value < math.MinInt64 {
		return 0, errors.Wrapf(errDecode, "invalid timestamp %q", n.String())
	}
	return int64(value), nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
