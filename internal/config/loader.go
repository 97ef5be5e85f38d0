package config

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		QueryType:        "standard",
		QueriesPerMinute: 60,
		Timeout:          30 * time.Second,
		ConfigFile:       configPath,
		Arrival:          ArrivalConfig{Model: ArrivalModelUniform},
		Tracing:          TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := cfgViper.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flag values over file settings.
// Flags the user did not touch never clobber the config file.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(flag *pflag.Flag) {
		if err != nil {
			return
		}
		switch flag.Name {
		case "url":
			cfg.SearchURL, err = flags.GetString(flag.Name)
		case "query-type":
			cfg.QueryType, err = flags.GetString(flag.Name)
		case "extra-params":
			cfg.ExtraParameters, err = flags.GetString(flag.Name)
		case "filter-probability":
			cfg.FilterProbability, err = flags.GetFloat64(flag.Name)
		case "facets":
			cfg.UseFacets, err = flags.GetBool(flag.Name)
		case "queries-file":
			cfg.QueriesFile, err = flags.GetString(flag.Name)
		case "filter-queries-file":
			cfg.FilterQueriesFile, err = flags.GetString(flag.Name)
		case "facet-fields-file":
			cfg.FacetFieldsFile, err = flags.GetString(flag.Name)
		case "pools":
			cfg.PoolsFile, err = flags.GetString(flag.Name)
		case "qpm":
			cfg.QueriesPerMinute, err = flags.GetInt(flag.Name)
		case "duration":
			cfg.Duration, err = flags.GetDuration(flag.Name)
		case "timeout":
			cfg.Timeout, err = flags.GetDuration(flag.Name)
		case "retries":
			cfg.Retries, err = flags.GetInt(flag.Name)
		case "arrival-model":
			var model string
			model, err = flags.GetString(flag.Name)
			cfg.Arrival.Model = ArrivalModel(model)
		case "json-output":
			cfg.JSONOutput, err = flags.GetBool(flag.Name)
		case "log-errors":
			cfg.LogErrors, err = flags.GetBool(flag.Name)
		case "history-file":
			cfg.HistoryFile, err = flags.GetString(flag.Name)
		case "threshold":
			cfg.Thresholds, err = flags.GetStringSlice(flag.Name)
		case "trace-endpoint":
			cfg.Tracing.Endpoint, err = flags.GetString(flag.Name)
		case "trace-protocol":
			cfg.Tracing.Protocol, err = flags.GetString(flag.Name)
		case "trace-sample-rate":
			cfg.Tracing.SampleRate, err = flags.GetFloat64(flag.Name)
		case "trace-insecure":
			cfg.Tracing.Insecure, err = flags.GetBool(flag.Name)
		case "trace-propagate":
			cfg.Tracing.Propagate, err = flags.GetBool(flag.Name)
		}
	})
	return err
}
