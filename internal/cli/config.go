package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/gardens/internal/logger"
	"github.com/mesh-intelligence/gardens/internal/paths"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "GARDENS"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyIdentity      = "identity"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"

	defaultBackend = types.BackendSQLite
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Identity     string `yaml:"identity,omitempty"`
	LogLevel     string `yaml:"log_level"`
	SyncStrategy string `yaml:"sync_strategy"`
}

// loadConfig resolves the config directory and reads config.yaml from it
// using Viper. A missing config.yaml is not an error; defaults and
// GARDENS_* environment variables still apply.
func loadConfig(flag string) (string, *viper.Viper, error) {
	configDir, err := paths.ResolveConfigDir(flag)
	if err != nil {
		return "", nil, &sysError{err: fmt.Errorf("resolve config dir: %w", err)}
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, logger.FormatAuto)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", nil, fmt.Errorf("read config: %w", err)
		}
	}

	return configDir, v, nil
}

// storeConfig builds the backend configuration from v. The data directory
// follows flag > config data_dir > GARDENS_DATA_DIR > $(CWD)/.gardens-db.
func storeConfig(v *viper.Viper, dataDirFlag string) (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, &sysError{err: fmt.Errorf("resolve data dir: %w", err)}
	}

	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		SQLite: &types.SQLiteConfig{
			SyncStrategy:  v.GetString(cfgKeySyncStrategy),
			BatchSize:     v.GetInt(cfgKeyBatchSize),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger from log_level and log_format.
func newLogger(v *viper.Viper, w io.Writer) (*zap.Logger, error) {
	level, err := logger.ParseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return nil, err
	}
	cfg := logger.Config{
		Format: v.GetString(cfgKeyLogFormat),
		Level:  level,
	}
	return cfg.New(w)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns false.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:      defaultBackend,
		DataDir:      dataDir,
		LogLevel:     "warn",
		SyncStrategy: types.SyncImmediate,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	data = append([]byte("# garden CLI configuration\n"), data...)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
