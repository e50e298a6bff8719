package entities

const (
	DefaultHost                       = "127.0.0.1"
	DefaultPort                       = 8080
	DefaultLogLevel                   = "info"
	DefaultPlotMaxPoints              = 1000
	DefaultFeatureWindow              = 10
	DefaultExchange                   = "enose.telemetry"
	DefaultCommandQueue               = "enose.commands"
	DefaultFilterCapacity             = 1000000
	DefaultDuplicationProbability     = 0.01
	DefaultResetFilterUsagePercentage = 0.75
	DefaultMetricsAddr                = ":2112"
)

type MonitorConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	LogLevel      string        `yaml:"logLevel"`
	DialRetries   uint64        `yaml:"dialRetries"`
	PlotMaxPoints int           `yaml:"plotMaxPoints"`
	FeatureWindow int           `yaml:"featureWindow"`
	ExportDir     string        `yaml:"exportDir"`
	SessionName   string        `yaml:"sessionName"`
	Broker        BrokerConfig  `yaml:"broker"`
	Metrics       MetricsConfig `yaml:"metrics"`
}

type BrokerConfig struct {
	URL                        string  `yaml:"url"`
	Exchange                   string  `yaml:"exchange"`
	CommandQueue               string  `yaml:"commandQueue"`
	DuplicationFilter          bool    `yaml:"duplicationFilter"`
	FilterCapacity             uint    `yaml:"filterCapacity"`
	DuplicationProbability     float64 `yaml:"duplicationProbability"`
	ResetFilterUsagePercentage float64 `yaml:"resetFilterUsagePercentage"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Enabled reports whether readings should be forwarded to a broker.
func (b BrokerConfig) Enabled() bool {
	return b.URL != ""
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Host:          DefaultHost,
		Port:          DefaultPort,
		LogLevel:      DefaultLogLevel,
		PlotMaxPoints: DefaultPlotMaxPoints,
		FeatureWindow: DefaultFeatureWindow,
		ExportDir:     ".",
		Broker: BrokerConfig{
			Exchange:                   DefaultExchange,
			CommandQueue:               DefaultCommandQueue,
			FilterCapacity:             DefaultFilterCapacity,
			DuplicationProbability:     DefaultDuplicationProbability,
			ResetFilterUsagePercentage: DefaultResetFilterUsagePercentage,
		},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
	}
}
