package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jsphweid/topliner/constants"
	"github.com/pkg/errors"
)

type Config struct {
	SampleRate uint32
	BlockSize  uint32
	LogLevel   string
	OutDir     string
	HTTPAddr   string
	InPort     int
	OutPort    int
	Dynamo     DynamoConfig
}

type DynamoConfig struct {
	Endpoint string
	Region   string
	Table    string
}

type fileConfig struct {
	SampleRate     uint32 `toml:"sample_rate"`
	BlockSize      uint32 `toml:"block_size"`
	LogLevel       string `toml:"log_level"`
	OutDir         string `toml:"out_dir"`
	HTTPAddr       string `toml:"http_addr"`
	InPort         int    `toml:"in_port"`
	OutPort        int    `toml:"out_port"`
	DynamoEndpoint string `toml:"dynamo_endpoint"`
	DynamoRegion   string `toml:"dynamo_region"`
	DynamoTable    string `toml:"dynamo_table"`
}

func Default() Config {
	return Config{
		SampleRate: constants.DefaultSampleRate,
		BlockSize:  constants.DefaultBlockSize,
		LogLevel:   "info",
		OutDir:     constants.GetOutDir(),
		HTTPAddr:   constants.DefaultHTTPAddr,
		InPort:     0,
		OutPort:    0,
		Dynamo: DynamoConfig{
			Endpoint: constants.DefaultDynamoEndpoint,
			Region:   constants.DefaultDynamoRegion,
			Table:    constants.DefaultDynamoTable,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "load config")
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("sample_rate") {
		cfg.SampleRate = raw.SampleRate
	}
	if meta.IsDefined("block_size") {
		cfg.BlockSize = raw.BlockSize
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("out_dir") {
		cfg.OutDir = strings.TrimSpace(raw.OutDir)
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("in_port") {
		cfg.InPort = raw.InPort
	}
	if meta.IsDefined("out_port") {
		cfg.OutPort = raw.OutPort
	}
	if meta.IsDefined("dynamo_endpoint") {
		cfg.Dynamo.Endpoint = strings.TrimSpace(raw.DynamoEndpoint)
	}
	if meta.IsDefined("dynamo_region") {
		cfg.Dynamo.Region = strings.TrimSpace(raw.DynamoRegion)
	}
	if meta.IsDefined("dynamo_table") {
		cfg.Dynamo.Table = strings.TrimSpace(raw.DynamoTable)
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(constants.EnvOutDir)); v != "" {
		cfg.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(constants.EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(constants.EnvDynamoEndpoint)); v != "" {
		cfg.Dynamo.Endpoint = v
	}
}

func (c Config) Validate() error {
	if c.SampleRate == 0 {
		return errors.New("sample_rate must be positive")
	}
	if c.BlockSize == 0 {
		return errors.New("block_size must be positive")
	}
	if c.InPort < 0 || c.OutPort < 0 {
		return errors.New("midi ports must not be negative")
	}
	return nil
}
