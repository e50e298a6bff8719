package export

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 15, 123456000, time.Local)

func createNullLogger() *logrus.Entry {
	log, _ := test.NewNullLogger()
	return log.WithFields(logrus.Fields{
		"Context": "testing",
	})
}

func createSession(name string, timestamps ...int64) entities.Session {
	s := entities.Session{Name: name}
	for i, timestamp := range timestamps {
		value := float64(i) + 0.25
		s.Readings = append(s.Readings, entities.Reading{
			Timestamp:    timestamp,
			Sample:       name,
			COMics:       value,
			EthanolMics:  value * 2,
			VOCMics:      value * 3,
			NO2Grove:     value * 4,
			EthanolGM:    value * 5,
			VOCGM:        value * 6,
			COGM:         float64(i),
			RelativeTime: float64(timestamp-timestamps[0]) / 1000,
		})
	}
	if len(timestamps) > 0 {
		start := timestamps[0]
		s.StartTimestamp = &start
	}
	return s
}

// loadTabular parses a tabular export back into readings.
func loadTabular(t *testing.T, path string) ([]string, []entities.Reading) {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var readings []entities.Reading
	for _, row := range rows[1:] {
		parse := func(i int) float64 {
			value, err := strconv.ParseFloat(row[i], 64)
			require.NoError(t, err)
			return value
		}
		timestamp, err := strconv.ParseInt(row[0], 10, 64)
		require.NoError(t, err)
		readings = append(readings, entities.Reading{
			Timestamp:    timestamp,
			RelativeTime: parse(1),
			Sample:       row[2],
			COMics:       parse(3),
			EthanolMics:  parse(4),
			VOCMics:      parse(5),
			NO2Grove:     parse(6),
			EthanolGM:    parse(7),
			VOCGM:        parse(8),
			COGM:         parse(9),
		})
	}
	return rows[0], readings
}

func assertSameChannels(t *testing.T, expected, actual []entities.Reading) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Timestamp, actual[i].Timestamp)
		assert.Equal(t, expected[i].Values(), actual[i].Values())
	}
}

type exporterSuite struct {
	suite.Suite
	exporter *Exporter
	dir      string
}

func (s *exporterSuite) SetupTest() {
	s.exporter = NewExporter(createNullLogger())
	s.exporter.now = func() time.Time { return fixedNow }
	s.dir = s.T().TempDir()
}

func (s *exporterSuite) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *exporterSuite) assertDirectoryEmpty() {
	entries, err := os.ReadDir(s.dir)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), entries)
}

func (s *exporterSuite) TestTabularRoundTrip() {
	session := createSession("Daun Kari", 1000, 3000, 5000)
	path := s.path("session.csv")

	require.NoError(s.T(), s.exporter.ExportTabular(path, session))

	header, readings := loadTabular(s.T(), path)
	assert.Equal(s.T(), []string{
		"timestamp", "relative_time", "sample",
		"co_m", "eth_m", "voc_m", "no2", "eth_gm", "voc_gm", "co_gm",
	}, header)
	assertSameChannels(s.T(), session.Readings, readings)
	assert.Equal(s.T(), "Daun Kari", readings[2].Sample)
	assert.Equal(s.T(), 4.0, readings[2].RelativeTime)
}

func (s *exporterSuite) TestTabularQuotesLabelsWithCommas() {
	session := createSession("Daun Kari, fresh", 1000)
	path := s.path("quoted.csv")

	require.NoError(s.T(), s.exporter.ExportTabular(path, session))

	_, readings := loadTabular(s.T(), path)
	assert.Equal(s.T(), "Daun Kari, fresh", readings[0].Sample)
}

func (s *exporterSuite) TestNativeRoundTrip() {
	session := createSession("Daun Seledri", 1000, 3000)
	path := s.path("session.json")

	require.NoError(s.T(), s.exporter.ExportNative(path, session))

	content, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	var document NativeDocument
	require.NoError(s.T(), json.Unmarshal(content, &document))
	assert.Equal(s.T(), "Daun Seledri", document.SampleName)
	assert.Equal(s.T(), "2026-10-18T09:30:15.123456", document.Timestamp)
	assert.Equal(s.T(), 2, document.TotalSamples)
	assertSameChannels(s.T(), session.Readings, document.Data)

	var raw map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(content, &raw))
	assert.ElementsMatch(s.T(), []string{"sample_name", "timestamp", "total_samples", "data"}, keys(raw))
	record := raw["data"].([]interface{})[0].(map[string]interface{})
	assert.Contains(s.T(), record, "relative_time")
	assert.Contains(s.T(), record, "sample")
}

func (s *exporterSuite) TestSaveToFileDispatchesOnExtension() {
	session := createSession("Daun Pandan", 1000, 2000)

	require.NoError(s.T(), s.exporter.SaveToFile(s.path("upper.CSV"), session))
	require.NoError(s.T(), s.exporter.SaveToFile(s.path("dump.json"), session))

	header, _ := loadTabular(s.T(), s.path("upper.CSV"))
	assert.Equal(s.T(), "timestamp", header[0])
	content, err := os.ReadFile(s.path("dump.json"))
	require.NoError(s.T(), err)
	assert.True(s.T(), json.Valid(content))
}

func (s *exporterSuite) TestInterchangeDocument() {
	session := createSession("Daun Jeruk", 1000, 3500, 6000)
	path := s.path("interchange.json")

	require.NoError(s.T(), s.exporter.ExportInterchange(path, session, ""))

	content, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	var document struct {
		Protected map[string]string `json:"protected"`
		Signature *string           `json:"signature"`
		Payload   struct {
			DeviceName string              `json:"device_name"`
			DeviceType string              `json:"device_type"`
			IntervalMs int64               `json:"interval_ms"`
			Sensors    []map[string]string `json:"sensors"`
			Values     [][]float64         `json:"values"`
		} `json:"payload"`
	}
	require.NoError(s.T(), json.Unmarshal(content, &document))

	assert.Equal(s.T(), map[string]string{"ver": "v1", "alg": "none"}, document.Protected)
	require.NotNil(s.T(), document.Signature)
	assert.Equal(s.T(), "", *document.Signature)
	assert.Equal(s.T(), "E-Nose-System", document.Payload.DeviceName)
	assert.Equal(s.T(), "CUSTOM", document.Payload.DeviceType)
	assert.Equal(s.T(), int64(2500), document.Payload.IntervalMs)
	require.Len(s.T(), document.Payload.Sensors, 7)
	assert.Equal(s.T(), map[string]string{"name": "co_mics", "units": "ppm"}, document.Payload.Sensors[0])
	assert.Equal(s.T(), map[string]string{"name": "co_grove", "units": "ppm"}, document.Payload.Sensors[6])
	require.Len(s.T(), document.Payload.Values, 3)
	for i, row := range document.Payload.Values {
		values := session.Readings[i].Values()
		assert.Equal(s.T(), values[:], row)
	}
	assert.Contains(s.T(), string(content), "\"values\": [\n      [\n        0.25,")
	assert.Contains(s.T(), string(content), "        0.0\n")
}

func (s *exporterSuite) TestInterchangeIntervalDefaultsForSingleReading() {
	document := newInterchangeDocument(createSession("", 1000).Readings)
	assert.Equal(s.T(), int64(2000), document.Payload.IntervalMs)
}

func (s *exporterSuite) TestInterchangeLabel() {
	assert.Equal(s.T(), "override", interchangeLabel("override", "Daun Kari"))
	assert.Equal(s.T(), "Daun Kari", interchangeLabel("", "Daun Kari"))
	assert.Equal(s.T(), "Unknown", interchangeLabel("", ""))
}

func (s *exporterSuite) TestEmptySessionWritesNothing() {
	empty := entities.Session{Name: "empty"}

	for _, err := range []error{
		s.exporter.ExportTabular(s.path("a.csv"), empty),
		s.exporter.ExportNative(s.path("b.json"), empty),
		s.exporter.ExportInterchange(s.path("c.json"), empty, "label"),
		s.exporter.SaveToFile(s.path("d.csv"), empty),
	} {
		assert.ErrorIs(s.T(), err, entities.ErrEmptySession)
	}
	s.assertDirectoryEmpty()
}

func (s *exporterSuite) TestWriteFailureIsReported() {
	err := s.exporter.ExportTabular(filepath.Join(s.dir, "missing", "session.csv"), createSession("x", 1000))

	assert.Error(s.T(), err)
	s.assertDirectoryEmpty()
}

func (s *exporterSuite) TestFailedWriteLeavesExistingFileUntouched() {
	path := s.path("keep.json")
	require.NoError(s.T(), os.WriteFile(path, []byte("previous"), 0600))

	session := createSession("x", 1000)
	session.Readings[0].COMics = posInf()
	err := s.exporter.ExportInterchange(path, session, "")

	assert.Error(s.T(), err)
	content, readErr := os.ReadFile(path)
	require.NoError(s.T(), readErr)
	assert.Equal(s.T(), "previous", string(content))
	entries, _ := os.ReadDir(s.dir)
	assert.Len(s.T(), entries, 1)
}

func (s *exporterSuite) TestFilesystemFailureIsWrapped() {
	files := new(fileManagementMock)
	failure := errors.New("disk full")
	files.On("writeFileAtomically", "session.csv").Return(failure)
	s.exporter.files = files

	err := s.exporter.ExportTabular("session.csv", createSession("x", 1000))

	assert.ErrorIs(s.T(), err, failure)
	files.AssertExpectations(s.T())
}

func (s *exporterSuite) TestTabularContentThroughMock() {
	files := new(fileManagementMock)
	files.On("writeFileAtomically", "session.csv").Return(nil)
	s.exporter.files = files

	require.NoError(s.T(), s.exporter.ExportTabular("session.csv", createSession("Daun Kari", 1000, 3000)))

	assert.Equal(s.T(),
		"timestamp,relative_time,sample,co_m,eth_m,voc_m,no2,eth_gm,voc_gm,co_gm\n"+
			"1000,0,Daun Kari,0.25,0.5,0.75,1,1.25,1.5,0\n"+
			"3000,2,Daun Kari,1.25,2.5,3.75,5,6.25,7.5,1\n",
		files.written.String())
}

func TestExporterSuite(t *testing.T) {
	suite.Run(t, new(exporterSuite))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func posInf() float64 {
	return math.Inf(1)
}
