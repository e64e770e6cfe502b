package pkgconfig

import (
	"encoding/base64"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// CSVINSIGHT_DATABASE_DSN overrides database.dsn.
const EnvPrefix = "CSVINSIGHT"

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

var _ Config = (*Viper)(nil)

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. Every
// key can be overridden by an environment variable carrying EnvPrefix.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()

	filename := path.Base(pathFile)
	filePath := path.Dir(pathFile)

	configName := path.Base(filename[:len(filename)-len(path.Ext(filename))])

	v.AddConfigPath(filePath)
	v.SetConfigName(configName)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewDefault returns a Config holding only built-in defaults and environment
// overrides. It is used by CLI commands that run without a config file.
func NewDefault() *Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Viper{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tz", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.address.http", ":8080")
	v.SetDefault("database.backend", "sqlite")
	v.SetDefault("database.dsn", "./data/csvinsight.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("media.backend", "local")
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.url", "/media/")
	v.SetDefault("modules.analysis.enabled", true)
	v.SetDefault("modules.analysis.retention", "10m")
	v.SetDefault("modules.analysis.max_upload_bytes", 32<<20)
	v.SetDefault("modules.analysis.sweeper.enabled", false)
	v.SetDefault("modules.analysis.sweeper.interval", "1m")
	v.SetDefault("modules.analysis.sweeper.batch_size", 100)
	v.SetDefault("modules.analysis.sweeper.workers", 2)
	v.SetDefault("modules.analysis.sweeper.max_retries", 3)
	v.SetDefault("modules.analysis.sweeper.base_backoff", "200ms")
}

// GetInt returns the value for key as int64.
func (vc *Viper) GetInt(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetFloat returns the value for key as float64.
func (vc *Viper) GetFloat(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetDuration returns the value for key parsed as a time.Duration ("10m", "250ms").
func (vc *Viper) GetDuration(key string) time.Duration {
	return vc.v.GetDuration(key)
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key split by commas.
func (vc *Viper) GetArray(key string) []string {
	return strings.Split(vc.v.GetString(key), ",")
}

// GetMap returns the value for key parsed from "k:v,k:v" pairs.
func (vc *Viper) GetMap(key string) map[string]string {
	pairs := strings.Split(vc.v.GetString(key), ",")
	m := make(map[string]string)
	for _, pair := range pairs {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) == 2 {
			m[kv[0]] = kv[1]
		}
	}

	return m
}

// IsSet reports whether key has a value from the file, environment or defaults.
func (vc *Viper) IsSet(key string) bool {
	return vc.v.IsSet(key)
}

// Set overrides a value at runtime. CLI flags use it to take precedence over the file.
func (vc *Viper) Set(key string, value any) {
	vc.v.Set(key, value)
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	// No resources to close for ViperConfig; this is just for interface completeness.
	return nil
}
