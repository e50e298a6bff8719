package session

import (
	"sort"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const millisecondsPerSecond = 1000.0

// PlotSeries holds per-channel values aligned with Times, ready for plotting.
type PlotSeries struct {
	Times    []float64
	Channels map[string][]float64
}

type ChannelStatistics struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// Recorder accumulates the readings of the active session. It is not safe
// for concurrent use; a single goroutine must own it.
type Recorder struct {
	name           string
	startTimestamp *int64
	readings       []entities.Reading
	log            *logrus.Entry
}

func NewRecorder(log *logrus.Entry) *Recorder {
	return &Recorder{log: log}
}

// StartSession names the session and restarts the time base. Existing
// readings are kept; call Clear to drop them.
func (r *Recorder) StartSession(name string) {
	r.name = name
	r.startTimestamp = nil
	r.log.WithField("session", name).Infoln("session started")
}

// AddReading stamps the reading with its time relative to the first reading
// of the session and appends it. The stored copy is returned.
func (r *Recorder) AddReading(reading entities.Reading) entities.Reading {
	if r.startTimestamp == nil {
		start := reading.Timestamp
		r.startTimestamp = &start
	}
	reading.RelativeTime = float64(reading.Timestamp-*r.startTimestamp) / millisecondsPerSecond
	r.readings = append(r.readings, reading)
	return reading
}

// Clear drops every reading and the time base. The session name is kept.
func (r *Recorder) Clear() {
	r.readings = nil
	r.startTimestamp = nil
	r.log.Infoln("session data cleared")
}

func (r *Recorder) SessionName() string {
	return r.name
}

func (r *Recorder) SampleCount() int {
	return len(r.readings)
}

// Readings returns a copy of the recorded readings.
func (r *Recorder) Readings() []entities.Reading {
	readings := make([]entities.Reading, len(r.readings))
	copy(readings, r.readings)
	return readings
}

// Session returns a copy of the session suitable for export.
func (r *Recorder) Session() entities.Session {
	s := entities.Session{Name: r.name, Readings: r.Readings()}
	if r.startTimestamp != nil {
		start := *r.startTimestamp
		s.StartTimestamp = &start
	}
	return s
}

// PlotSeries returns the session downsampled by a fixed stride of
// count/maxPoints when it holds more than maxPoints readings. A
// non-positive maxPoints disables downsampling.
func (r *Recorder) PlotSeries(maxPoints int) (PlotSeries, bool) {
	if len(r.readings) == 0 {
		return PlotSeries{}, false
	}

	stride := 1
	if maxPoints > 0 && len(r.readings) > maxPoints {
		stride = len(r.readings) / maxPoints
	}

	size := (len(r.readings) + stride - 1) / stride
	series := PlotSeries{
		Times:    make([]float64, 0, size),
		Channels: make(map[string][]float64, entities.ChannelCount),
	}
	for _, name := range entities.Channels {
		series.Channels[name] = make([]float64, 0, size)
	}
	for i := 0; i < len(r.readings); i += stride {
		reading := r.readings[i]
		series.Times = append(series.Times, reading.RelativeTime)
		for c, value := range reading.Values() {
			name := entities.Channels[c]
			series.Channels[name] = append(series.Channels[name], value)
		}
	}
	return series, true
}

// FeatureVector averages each channel over the last windowSize readings
// and returns the means as a 1x7 matrix in canonical channel order.
func (r *Recorder) FeatureVector(windowSize int) (*mat.Dense, bool) {
	if len(r.readings) == 0 {
		return nil, false
	}
	window := windowSize
	if window <= 0 || window > len(r.readings) {
		window = len(r.readings)
	}

	columns := channelColumns(r.readings[len(r.readings)-window:])
	features := make([]float64, entities.ChannelCount)
	for c, column := range columns {
		features[c] = stat.Mean(column, nil)
	}
	return mat.NewDense(1, entities.ChannelCount, features), true
}

// Statistics summarises every channel over the whole session. The standard
// deviation is the population one.
func (r *Recorder) Statistics() (map[string]ChannelStatistics, bool) {
	if len(r.readings) == 0 {
		return nil, false
	}

	statistics := make(map[string]ChannelStatistics, entities.ChannelCount)
	for c, column := range channelColumns(r.readings) {
		mean, stdDev := stat.PopMeanStdDev(column, nil)
		statistics[entities.Channels[c]] = ChannelStatistics{
			Mean:   mean,
			StdDev: stdDev,
			Min:    floats.Min(column),
			Max:    floats.Max(column),
			Median: median(column),
		}
	}
	return statistics, true
}

// Duration is the span in seconds between the first and last reading.
func (r *Recorder) Duration() float64 {
	if len(r.readings) < 2 {
		return 0.0
	}
	return r.readings[len(r.readings)-1].RelativeTime - r.readings[0].RelativeTime
}

func channelColumns(readings []entities.Reading) [entities.ChannelCount][]float64 {
	var columns [entities.ChannelCount][]float64
	for c := range columns {
		columns[c] = make([]float64, len(readings))
	}
	for i, reading := range readings {
		for c, value := range reading.Values() {
			columns[c][i] = value
		}
	}
	return columns
}

// median averages the two middle values of an even-sized sample.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}
