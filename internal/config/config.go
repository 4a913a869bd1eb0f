// Package config loads settings from config.yaml, the environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"constellations/internal/locate"
	"constellations/internal/store"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	EnvPrefix = "CONSTELLATIONS"
)

const (
	KeyDataDir        = "data_dir"
	KeyCatalog        = "catalog"
	KeyUser           = "user"
	KeyExportDir      = "export_dir"
	KeyShareBaseURL   = "share_base_url"
	KeySlotKey        = "slot_key"
	KeyLogLevel       = "log_level"
	KeyLocateProvider = "locate.provider"
	KeyLocateLat      = "locate.lat"
	KeyLocateLng      = "locate.lng"
	KeyLocateEndpoint = "locate.endpoint"
	KeyLocateTimeout  = "locate.timeout"
)

const DefaultShareBaseURL = "https://constellations.app/"

const defaultConfigYAML = `# constellations configuration

# Where the trail database and log file live (overridable by --data-dir)
# data_dir:

# Point catalog (.geojson, .json, .csv, .kml, .wkt); empty uses the bundled sample
# catalog:

# Name printed on exported images
# user:

# Directory for exported PNGs; empty means the working directory
# export_dir:

share_base_url: https://constellations.app/
slot_key: saved_trails
log_level: info

locate:
  # static, ip or none
  provider: ip
  lat: 0
  lng: 0
  endpoint: http://ip-api.com/json/?fields=status,message,lat,lon
  timeout: 5s
`

// Config is the resolved application configuration.
type Config struct {
	ConfigDir    string
	DataDir      string
	Catalog      string
	User         string
	ExportDir    string
	ShareBaseURL string
	SlotKey      string
	LogLevel     string
	Locate       locate.Options
}

// Load reads config.yaml from configDir, creating the directory and a default
// file on first run. Environment variables prefixed CONSTELLATIONS_ override
// file values; nested keys use '_' (CONSTELLATIONS_LOCATE_PROVIDER).
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyShareBaseURL, DefaultShareBaseURL)
	v.SetDefault(KeySlotKey, store.DefaultKey)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLocateProvider, "ip")
	v.SetDefault(KeyLocateEndpoint, locate.DefaultEndpoint)
	v.SetDefault(KeyLocateTimeout, locate.DefaultTimeout)
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Resolve turns a loaded viper instance into a Config. dataDirFlag wins over
// every other data directory source.
func Resolve(v *viper.Viper, configDir, dataDirFlag string) (Config, error) {
	dataDir, err := ResolveDataDir(dataDirFlag, v.GetString(KeyDataDir))
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	timeout := v.GetDuration(KeyLocateTimeout)
	if timeout <= 0 {
		timeout = locate.DefaultTimeout
	}
	c := Config{
		ConfigDir:    configDir,
		DataDir:      dataDir,
		Catalog:      v.GetString(KeyCatalog),
		User:         v.GetString(KeyUser),
		ExportDir:    v.GetString(KeyExportDir),
		ShareBaseURL: v.GetString(KeyShareBaseURL),
		SlotKey:      v.GetString(KeySlotKey),
		LogLevel:     v.GetString(KeyLogLevel),
		Locate: locate.Options{
			Provider: v.GetString(KeyLocateProvider),
			Lat:      v.GetFloat64(KeyLocateLat),
			Lng:      v.GetFloat64(KeyLocateLng),
			Endpoint: v.GetString(KeyLocateEndpoint),
			Timeout:  timeout,
		},
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	return c, nil
}

// LogPath is the terminal UI's log file.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, appName+".log")
}
