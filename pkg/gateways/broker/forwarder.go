package broker

import (
	"fmt"
	"sync"

	bloomFilter "github.com/bits-and-blooms/bloom/v3"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/broker/network"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Forwarder republishes ingested events to the broker. Readings already
// seen, identified by timestamp and sample, are skipped when the
// duplication filter is enabled.
type Forwarder struct {
	publisher                   network.Publisher
	log                         *logrus.Entry
	duplicationMutex            sync.Mutex
	filter                      *bloomFilter.BloomFilter
	filterCapacity              uint
	maximumFilterUsage          float64
	isReadingDuplicatedFunction func(key string) bool
}

func NewForwarder(conf entities.BrokerConfig, publisher network.Publisher, log *logrus.Entry) *Forwarder {
	forwarder := &Forwarder{
		publisher:          publisher,
		log:                log,
		filterCapacity:     conf.FilterCapacity,
		maximumFilterUsage: conf.ResetFilterUsagePercentage,
	}
	duplicationFilterFunctionMapping := map[bool]func(string) bool{
		false: func(string) bool { return false },
		true:  forwarder.isReadingDuplicated,
	}
	if conf.DuplicationFilter {
		forwarder.filter = bloomFilter.NewWithEstimates(conf.FilterCapacity, conf.DuplicationProbability)
	}
	forwarder.isReadingDuplicatedFunction = duplicationFilterFunctionMapping[conf.DuplicationFilter]
	return forwarder
}

// Transmit publishes a reading unless it was already forwarded.
func (f *Forwarder) Transmit(reading entities.Reading) error {
	key := duplicationKey(reading)

	f.duplicationMutex.Lock()
	if f.isReadingDuplicatedFunction(key) {
		f.duplicationMutex.Unlock()
		f.log.WithField("key", key).Debugln("duplicated reading skipped")
		return nil
	}
	f.duplicationMutex.Unlock()

	if err := f.publisher.PublishReading(reading); err != nil {
		f.log.WithError(err).Warnln("forward reading")
		return errors.Wrap(err, "forward reading")
	}

	// Only delivered readings are remembered, so a failed one can be retried.
	f.duplicationMutex.Lock()
	f.updateDuplicationFilter(key)
	f.duplicationMutex.Unlock()
	return nil
}

func (f *Forwarder) PublishStatus(status entities.StatusEvent) error {
	if err := f.publisher.PublishStatus(status); err != nil {
		f.log.WithError(err).WithField("msg_type", status.MsgType).Warnln("forward status")
		return errors.Wrap(err, "forward status")
	}
	return nil
}

func (f *Forwarder) isReadingDuplicated(key string) bool {
	return f.filter.Test([]byte(key))
}

func (f *Forwarder) updateDuplicationFilter(key string) {
	if f.filter == nil {
		return
	}
	f.resetDuplicationFilter()
	f.filter.Add([]byte(key))
}

// resetDuplicationFilter clears the filter once its estimated element count
// reaches the configured share of its capacity, keeping the false positive
// rate near the configured probability.
func (f *Forwarder) resetDuplicationFilter() {
	if f.filterCapacity == 0 {
		return
	}
	currentFilterUsage := float64(f.filter.ApproximatedSize()) / float64(f.filterCapacity)
	if currentFilterUsage >= f.maximumFilterUsage {
		f.filter.ClearAll()
	}
}

func duplicationKey(reading entities.Reading) string {
	return fmt.Sprintf("%d_%s", reading.Timestamp, reading.Sample)
}
