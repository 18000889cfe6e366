// Package config loads neatauth configuration from defaults, an optional
// YAML file and command-line flags, in that order of precedence.
package config

import (
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"neatauth/internal/credential"
	"neatauth/internal/genotype"
	"neatauth/internal/logging"
	"neatauth/internal/storage"
	"neatauth/internal/xdg"
)

const (
	CodeConfigLoad    = "CONFIG_LOAD"
	CodeConfigInvalid = "CONFIG_INVALID"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

type Config struct {
	Genome  genotype.Config `koanf:"genome" json:"genome" yaml:"genome"`
	Encoder EncoderConfig   `koanf:"encoder" json:"encoder" yaml:"encoder"`
	Store   storage.Config  `koanf:"store" json:"store" yaml:"store"`
	Log     LogConfig       `koanf:"log" json:"log" yaml:"log"`
	Cache   CacheConfig     `koanf:"cache" json:"cache" yaml:"cache"`
}

// EncoderConfig sets the secret encoding width. Zero follows genome.inputs.
type EncoderConfig struct {
	Width int `koanf:"width" json:"width" yaml:"width"`
}

type LogConfig struct {
	Format string `koanf:"format" json:"format" yaml:"format"`
	Level  string `koanf:"level" json:"level" yaml:"level"`
}

// CacheConfig bounds the compiled-network cache. Negative disables it.
type CacheConfig struct {
	Size int `koanf:"size" json:"size" yaml:"size"`
}

// Default persists genomes in the file store so that separate processes
// share them. ResolvePaths fills in its root.
func Default() Config {
	store := storage.DefaultConfig()
	store.Kind = storage.KindFile
	return Config{
		Genome:  genotype.DefaultConfig(),
		Encoder: EncoderConfig{Width: 0},
		Store:   store,
		Log:     LogConfig{Format: FormatText, Level: "info"},
		Cache:   CacheConfig{Size: credential.DefaultCacheSize},
	}
}

// flagKeys maps override flag names to config keys.
var flagKeys = map[string]string{
	"store":         "store.kind",
	"store-root":    "store.root",
	"store-dsn":     "store.dsn",
	"redis-addr":    "store.redis.address",
	"redis-db":      "store.redis.db",
	"encoder-width": "encoder.width",
	"cache-size":    "cache.size",
	"log-format":    "log.format",
	"log-level":     "log.level",
}

// RegisterFlags adds the override flags to fs. Their zero defaults never
// reach the config; only flags set on the command line do.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("store", "", "genome store backend ("+strings.Join(storage.Kinds(), ", ")+")")
	fs.String("store-root", "", "file store directory")
	fs.String("store-dsn", "", "sqlite path or postgres/mysql DSN")
	fs.String("redis-addr", "", "redis address (host:port)")
	fs.Int("redis-db", 0, "redis database number")
	fs.Int("encoder-width", 0, "secret encoding width (0 follows genome inputs)")
	fs.Int("cache-size", 0, "compiled network cache size (negative disables)")
	fs.String("log-format", "", "log format (json, text)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// DefaultFile returns the XDG config file path when that file exists, or "".
func DefaultFile() string {
	path := xdg.ConfigFile()
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load builds the effective configuration. An empty path skips the file
// layer; a non-empty path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code(CodeConfigLoad).In("config").Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code(CodeConfigInvalid).In("config").With("path", path).Wrapf(err, "decode config")
	}
	cfg.ResolvePaths()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return oops.Code(CodeConfigLoad).In("config").With("path", path).Wrapf(err, "stat config file")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code(CodeConfigLoad).In("config").With("path", path).Wrapf(err, "load config file")
	}
	return nil
}

// ResolvePaths fills empty file and sqlite locations from the XDG data dir.
func (c *Config) ResolvePaths() {
	switch c.Store.Kind {
	case storage.KindFile:
		if c.Store.Root == "" {
			c.Store.Root = xdg.GenomeDir()
		}
	case storage.KindSQLite:
		if c.Store.DSN == "" {
			c.Store.DSN = xdg.GenomeDB()
		}
	}
}

func (c Config) Validate() error {
	errb := oops.Code(CodeConfigInvalid).In("config")
	if !slices.Contains(storage.Kinds(), c.Store.Kind) {
		return errb.With("kind", c.Store.Kind, "supported", storage.Kinds()).
			Errorf("unsupported store backend: %q", c.Store.Kind)
	}
	if c.Log.Format != FormatJSON && c.Log.Format != FormatText {
		return errb.With("format", c.Log.Format).Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errb.With("level", c.Log.Level).Wrapf(err, "invalid log level")
	}
	if c.Encoder.Width < 0 {
		return errb.Errorf("encoder width must not be negative, got %d", c.Encoder.Width)
	}
	return c.Genome.Validate()
}
