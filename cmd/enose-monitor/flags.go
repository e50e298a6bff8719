package main

import (
	"fmt"
	"os"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

type options struct {
	configPath      string
	host            string
	port            int
	sessionName     string
	logLevel        string
	dialRetries     uint64
	exportDir       string
	exportPath      string
	interchangePath string
	label           string
	metricsAddr     string
	brokerURL       string
	commands        []string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("enose-monitor", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML configuration file")
	flagSet.StringVar(&opts.host, "host", entities.DefaultHost, "device host")
	flagSet.IntVar(&opts.port, "port", entities.DefaultPort, "device port")
	flagSet.StringVarP(&opts.sessionName, "session", "s", "", "session name, also used as the sample label")
	flagSet.StringVar(&opts.logLevel, "log-level", entities.DefaultLogLevel, "log level (debug, info, warn, error)")
	flagSet.Uint64Var(&opts.dialRetries, "dial-retries", 0, "extra connection attempts before giving up")
	flagSet.StringVar(&opts.exportDir, "export-dir", ".", "directory for relative export paths")
	flagSet.StringVarP(&opts.exportPath, "export", "o", "", "save the session on exit (.csv for tabular, anything else for JSON)")
	flagSet.StringVar(&opts.interchangePath, "interchange", "", "write the session in the interchange format on exit")
	flagSet.StringVar(&opts.label, "label", "", "interchange label (defaults to the session name)")
	flagSet.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flagSet.StringVar(&opts.brokerURL, "broker-url", "", "AMQP URL to forward readings to")
	flagSet.StringArrayVar(&opts.commands, "command", nil, "command sent to the device after connecting (repeatable)")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  enose-monitor [flags]\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	return flagSet
}

// apply overrides conf with every flag given on the command line.
func (o options) apply(flagSet *pflag.FlagSet, conf *entities.MonitorConfig) {
	if flagSet.Changed("host") {
		conf.Host = o.host
	}
	if flagSet.Changed("port") {
		conf.Port = o.port
	}
	if flagSet.Changed("session") {
		conf.SessionName = o.sessionName
	}
	if flagSet.Changed("log-level") {
		conf.LogLevel = o.logLevel
	}
	if flagSet.Changed("dial-retries") {
		conf.DialRetries = o.dialRetries
	}
	if flagSet.Changed("export-dir") {
		conf.ExportDir = o.exportDir
	}
	if flagSet.Changed("broker-url") {
		conf.Broker.URL = o.brokerURL
	}
	if flagSet.Changed("metrics-addr") {
		conf.Metrics.Enabled = true
		conf.Metrics.Addr = o.metricsAddr
	}
}

// validate rejects settings that would otherwise be silently reinterpreted.
func validate(conf entities.MonitorConfig) error {
	if conf.Metrics.Enabled && conf.Metrics.Addr == "" {
		return errors.New("metrics enabled without an address")
	}
	return nil
}
