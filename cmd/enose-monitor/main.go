// enose-monitor connects to an electronic nose over TCP, records the
// incoming readings into a session and exports it when interrupted.
//
// Optionally the readings are republished to an AMQP exchange, from which
// commands for the device are also consumed, and ingestion counters are
// served for Prometheus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/export"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/broker"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/gateways/enose"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/logging"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/metrics"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/monitor"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/session"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const progressInterval = 100

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if len(flagSet.Args()) > 0 {
		return errors.Errorf("unexpected argument: %s", flagSet.Args()[0])
	}

	conf, err := utils.LoadMonitorConfig(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(flagSet, &conf)
	if err := validate(conf); err != nil {
		return err
	}

	logger := logging.NewLogrus(conf.LogLevel, os.Stderr)
	log := logger.Get("Main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var registerer prometheus.Registerer
	if conf.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registerer = registry
		go serveMetrics(ctx, conf.Metrics.Addr, registry, logger.Get("Metrics"))
	}

	client := enose.NewClient(logger.Get("Client"),
		enose.WithMetrics(metrics.NewIngestionMetrics(registerer)),
		enose.WithDialRetries(conf.DialRetries),
	)
	defer client.Close()

	recorder := session.NewRecorder(logger.Get("Session"))
	recorder.StartSession(conf.SessionName)

	var monitorOptions []monitor.Option
	var integration *broker.Integration
	if conf.Broker.Enabled() {
		integration, err = broker.NewIntegration(conf.Broker, logger.Get("Broker"))
		if err != nil {
			return err
		}
		defer integration.Close()
		monitorOptions = append(monitorOptions, monitor.WithTransmitter(integration))
	}

	var mon *monitor.Monitor
	monitorOptions = append(monitorOptions, monitor.WithEventHook(func(event entities.Event) {
		if event.Kind == entities.EventReading {
			mon.Do(func(r *session.Recorder) { logProgress(log, r, conf.PlotMaxPoints) })
		}
	}))
	mon = monitor.New(client, recorder, logger.Get("Monitor"), monitorOptions...)
	monitorDone := make(chan error, 1)
	go func() {
		// ends once the client closes its event channel
		monitorDone <- mon.Run(context.Background())
	}()

	if integration != nil {
		commands, err := integration.Commands(ctx)
		if err != nil {
			return err
		}
		go mon.RelayCommands(ctx, commands, client)
	}

	if err := client.Connect(ctx, conf.Host, conf.Port); err != nil {
		return err
	}
	for _, command := range opts.commands {
		if err := client.SendCommand(command); err != nil {
			log.WithError(err).WithField("command", command).Errorln("send startup command")
		}
	}

	<-ctx.Done()
	log.Infoln("shutting down")
	client.Close()
	if err := <-monitorDone; err != nil {
		log.WithError(err).Warnln("monitor stopped")
	}

	var snapshot entities.Session
	mon.Do(func(r *session.Recorder) {
		logSummary(log, r, conf.FeatureWindow)
		snapshot = r.Session()
	})
	err = exportSession(export.NewExporter(logger.Get("Export")), conf.ExportDir, opts, snapshot)
	if errors.Is(err, entities.ErrEmptySession) {
		log.Warnln("no readings recorded, nothing exported")
		return nil
	}
	return err
}

// logProgress reports the recording every progressInterval readings.
func logProgress(log *logrus.Entry, r *session.Recorder, plotMaxPoints int) {
	count := r.SampleCount()
	if count%progressInterval != 0 {
		return
	}
	series, _ := r.PlotSeries(plotMaxPoints)
	log.WithFields(logrus.Fields{
		"samples":  count,
		"plotted":  len(series.Times),
		"duration": r.Duration(),
	}).Infoln("recording")
}

func logSummary(log *logrus.Entry, r *session.Recorder, featureWindow int) {
	log.WithFields(logrus.Fields{
		"session":  r.SessionName(),
		"samples":  r.SampleCount(),
		"duration": r.Duration(),
	}).Infoln("session summary")

	statistics, ok := r.Statistics()
	if !ok {
		return
	}
	if features, ok := r.FeatureVector(featureWindow); ok {
		log.WithField("window", featureWindow).Infof("feature vector %v", features.RawRowView(0))
	}
	for _, channel := range entities.Channels {
		s := statistics[channel]
		log.WithFields(logrus.Fields{
			"channel": channel,
			"mean":    s.Mean,
			"std":     s.StdDev,
			"min":     s.Min,
			"max":     s.Max,
			"median":  s.Median,
		}).Infoln("channel statistics")
	}
}

func exportSession(exporter *export.Exporter, dir string, opts options, s entities.Session) error {
	if opts.exportPath != "" {
		if err := exporter.SaveToFile(resolvePath(dir, opts.exportPath), s); err != nil {
			return err
		}
	}
	if opts.interchangePath != "" {
		if err := exporter.ExportInterchange(resolvePath(dir, opts.interchangePath), s, opts.label); err != nil {
			return err
		}
	}
	return nil
}

// resolvePath places relative export paths under the configured directory.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
