package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"emperror.dev/errors"
	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/voluzi/debugpilot/internal/utils"
)

const (
	ArchiveFormatZip   = "zip"
	ArchiveFormatTarGz = "tar.gz"

	DefaultMaxBundleLogSize = "25MB"
)

var ArchiveFormats = []string{ArchiveFormatZip, ArchiveFormatTarGz}

// Config is the application configuration relevant to diagnostics.
type Config struct {
	Main     MainConfig     `yaml:"main"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Debug    DebugConfig    `yaml:"debug"`
}

type MainConfig struct {
	DataFolder string `yaml:"dataFolder"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	UrlBase    string `yaml:"urlBase"`
	ApiKey     string `yaml:"apiKey" sensitive:"true"`
	Username   string `yaml:"username" sensitive:"true"`
	Password   string `yaml:"password" sensitive:"true"`
	ProxyHost  string `yaml:"proxyHost" sensitive:"true"`
}

type LoggingConfig struct {
	Level            string   `yaml:"level"`
	File             string   `yaml:"file"`
	MarkersToLog     []string `yaml:"markersToLog"`
	MaxBundleLogSize string   `yaml:"maxBundleLogSize"`
}

type DatabaseConfig struct {
	File string `yaml:"file"`
}

type DebugConfig struct {
	ArchiveFormat       string `yaml:"archiveFormat"`
	ArchiveCacheSeconds int    `yaml:"archiveCacheSeconds"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Main: MainConfig{
			DataFolder: "./data",
			Host:       "127.0.0.1",
			Port:       5077,
		},
		Logging: LoggingConfig{
			Level:            "info",
			File:             "./data/logs/debugpilot.log",
			MarkersToLog:     []string{},
			MaxBundleLogSize: DefaultMaxBundleLogSize,
		},
		Database: DatabaseConfig{
			File: "./data/database/debugpilot.db",
		},
		Debug: DebugConfig{
			ArchiveFormat:       ArchiveFormatZip,
			ArchiveCacheSeconds: 30,
		},
	}
}

// Load reads a YAML or TOML file and merges it over the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes raw config content. ext selects the decoder (".toml" or YAML otherwise).
func Parse(data []byte, ext string) (*Config, error) {
	var patch interface{}
	switch strings.ToLower(ext) {
	case ".toml":
		decoded, err := utils.TomlDecode(string(data))
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse toml config")
		}
		patch = decoded
	default:
		if err := yaml.Unmarshal(data, &patch); err != nil {
			return nil, errors.Wrap(err, "failed to parse yaml config")
		}
	}

	defaults, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	merged := defaults
	if patch != nil {
		if merged, err = utils.Merge(defaults, patch); err != nil {
			return nil, errors.Wrap(err, "failed to merge config with defaults")
		}
	}

	b, err := yaml.Marshal(merged)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if !slices.Contains(ArchiveFormats, c.Debug.ArchiveFormat) {
		return errors.Errorf("unsupported archive format %q", c.Debug.ArchiveFormat)
	}
	if _, err := c.Logging.MaxBundleLogBytes(); err != nil {
		return errors.Wrap(err, "invalid logging.maxBundleLogSize")
	}
	return nil
}

// MaxBundleLogBytes parses MaxBundleLogSize.
func (l LoggingConfig) MaxBundleLogBytes() (datasize.ByteSize, error) {
	var size datasize.ByteSize
	if l.MaxBundleLogSize == "" {
		return 0, nil
	}
	err := size.UnmarshalText([]byte(l.MaxBundleLogSize))
	return size, err
}

// DatabaseFolder is the directory containing the database file.
func (c *Config) DatabaseFolder() string {
	return filepath.Dir(c.Database.File)
}

// LogsFolder is the directory containing the log file.
func (c *Config) LogsFolder() string {
	return filepath.Dir(c.Logging.File)
}

func toMap(cfg *Config) (interface{}, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var out interface{}
	return out, yaml.Unmarshal(b, &out)
}
