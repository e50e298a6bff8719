package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	nativeTimestampFormat = "2006-01-02T15:04:05.000000"
	tabularExtension      = ".csv"
	jsonIndent            = "  "
)

var tabularHeader = []string{
	"timestamp", "relative_time", "sample",
	entities.ChannelCOMics,
	entities.ChannelEthanolMics,
	entities.ChannelVOCMics,
	entities.ChannelNO2Grove,
	entities.ChannelEthanolGM,
	entities.ChannelVOCGM,
	entities.ChannelCOGM,
}

// NativeDocument is the full session dump written by ExportNative.
type NativeDocument struct {
	SampleName   string             `json:"sample_name"`
	Timestamp    string             `json:"timestamp"`
	TotalSamples int                `json:"total_samples"`
	Data         []entities.Reading `json:"data"`
}

// Exporter writes recorded sessions to disk. Every export either produces
// a complete file or leaves the destination untouched.
type Exporter struct {
	files filesystemManagement
	log   *logrus.Entry
	now   func() time.Time
}

func NewExporter(log *logrus.Entry) *Exporter {
	return &Exporter{
		files: new(fileManagement),
		log:   log,
		now:   time.Now,
	}
}

// SaveToFile picks the tabular format for .csv paths and the native format
// otherwise.
func (e *Exporter) SaveToFile(path string, s entities.Session) error {
	if strings.EqualFold(filepath.Ext(path), tabularExtension) {
		return e.ExportTabular(path, s)
	}
	return e.ExportNative(path, s)
}

func (e *Exporter) ExportTabular(path string, s entities.Session) error {
	return e.export("tabular", path, s, func(w io.Writer) error {
		return writeTabular(w, s.Readings)
	})
}

func (e *Exporter) ExportNative(path string, s entities.Session) error {
	document := NativeDocument{
		SampleName:   s.Name,
		Timestamp:    e.now().Format(nativeTimestampFormat),
		TotalSamples: len(s.Readings),
		Data:         s.Readings,
	}
	return e.export("native", path, s, func(w io.Writer) error {
		return writeJSON(w, document)
	})
}

// ExportInterchange writes the session in the fixed interchange schema.
// label overrides the session name when not empty.
func (e *Exporter) ExportInterchange(path string, s entities.Session, label string) error {
	document := newInterchangeDocument(s.Readings)
	err := e.export("interchange", path, s, func(w io.Writer) error {
		return writeJSON(w, document)
	})
	if err == nil {
		e.log.WithFields(logrus.Fields{
			"label":       interchangeLabel(label, s.Name),
			"samples":     len(document.Payload.Values),
			"interval_ms": document.Payload.IntervalMs,
		}).Infoln("interchange export ready")
	}
	return err
}

func (e *Exporter) export(format, path string, s entities.Session, write func(io.Writer) error) error {
	log := e.log.WithFields(logrus.Fields{"format": format, "path": path})
	if len(s.Readings) == 0 {
		log.Warnln("no data to export")
		return errors.Wrapf(entities.ErrEmptySession, "%s export", format)
	}
	if err := e.files.writeFileAtomically(path, write); err != nil {
		log.WithError(err).Errorln("export failed")
		return errors.Wrapf(err, "%s export", format)
	}
	log.WithField("samples", len(s.Readings)).Infoln("session exported")
	return nil
}

func writeTabular(w io.Writer, readings []entities.Reading) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(tabularHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	row := make([]string, len(tabularHeader))
	for _, reading := range readings {
		row[0] = strconv.FormatInt(reading.Timestamp, 10)
		row[1] = formatFloat(reading.RelativeTime)
		row[2] = reading.Sample
		for c, value := range reading.Values() {
			row[3+c] = formatFloat(value)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush rows")
}

func writeJSON(w io.Writer, document interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", jsonIndent)
	return errors.Wrap(encoder.Encode(document), "encode document")
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
