package utils

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	envHost              = "ENOSE_HOST"
	envPort              = "ENOSE_PORT"
	envLogLevel          = "ENOSE_LOG_LEVEL"
	envBrokerURL         = "ENOSE_BROKER_URL"
	envDuplicationFilter = "ENOSE_DUPLICATION_FILTER"
)

type config interface {
	entities.MonitorConfig | entities.BrokerConfig
}

func readTextFile(filepathName string) ([]byte, error) {
	fileContent, err := os.ReadFile(filepath.Clean(filepathName))
	return fileContent, err
}

// ConfigurationParser overlays the YAML file onto configEntity, so fields
// absent from the file keep the values passed in.
func ConfigurationParser[T config](filepathName string, configEntity T) (T, error) {
	fileContent, err := readTextFile(filepathName)
	if err != nil {
		return configEntity, err
	}

	err = yaml.Unmarshal(fileContent, &configEntity)
	return configEntity, err
}

// LoadMonitorConfig reads the monitor configuration from filepathName, when
// given, and applies environment overrides on top of the defaults.
func LoadMonitorConfig(filepathName string) (entities.MonitorConfig, error) {
	conf := entities.DefaultMonitorConfig()
	if filepathName != "" {
		var err error
		conf, err = ConfigurationParser(filepathName, conf)
		if err != nil {
			return conf, errors.Wrap(err, "parse monitor configuration")
		}
	}
	if err := ApplyEnvironmentOverrides(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

func ApplyEnvironmentOverrides(conf *entities.MonitorConfig) error {
	conf.Host = GetValueFromEnvironmentVariable(envHost, conf.Host)
	conf.LogLevel = GetValueFromEnvironmentVariable(envLogLevel, conf.LogLevel)
	conf.Broker.URL = GetValueFromEnvironmentVariable(envBrokerURL, conf.Broker.URL)

	if value := os.Getenv(envPort); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "%s environment variable with invalid value", envPort)
		}
		conf.Port = port
	}
	if value := os.Getenv(envDuplicationFilter); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "%s environment variable with invalid value", envDuplicationFilter)
		}
		conf.Broker.DuplicationFilter = enabled
	}
	return nil
}

func GetValueFromEnvironmentVariable(variableName, defaultValue string) string {
	value := os.Getenv(variableName)
	if value != "" {
		return value
	}
	return defaultValue
}
