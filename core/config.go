package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
		BodyLimit       string
	}

	DraftsConfig struct {
		Backend       string // memory (default), bigcache, redis, pebble
		Namespace     string
		TTL           time.Duration
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		PebbleDir     string
	}

	CacheConfig struct {
		Enabled     bool
		NumCounters int64
		MaxCost     int64
	}

	CodecConfig struct {
		DefaultFormat string
		MaxPayload    int
	}

	LogConfig struct {
		Format string // text (default) | json
	}

	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		WorkDir      string
		RollbarToken string
		Log          LogConfig
		Server       ServerConfig
		Drafts       DraftsConfig
		Cache        CacheConfig
		Codec        CodecConfig
	}
)

func (sc ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}

// NewConfig loads the app config from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the current env, e.g. `DEV_SERVER_PORT`.
func NewConfig() *Config {
	conf, err := LoadConfig(Getwd())
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig is like NewConfig but looks for dotenv files under the `workDir`.
func LoadConfig(workDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		WorkDir:      workDir,
		RollbarToken: v.GetString("rollbarToken"),
		Log: LogConfig{
			Format: v.GetString("log.format"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			BodyLimit:       v.GetString("server.bodyLimit"),
		},
		Drafts: DraftsConfig{
			Backend:       v.GetString("drafts.backend"),
			Namespace:     v.GetString("drafts.namespace"),
			TTL:           v.GetDuration("drafts.ttl"),
			RedisAddr:     v.GetString("drafts.redisAddr"),
			RedisPassword: v.GetString("drafts.redisPassword"),
			RedisDB:       v.GetInt("drafts.redisDB"),
			PebbleDir:     v.GetString("drafts.pebbleDir"),
		},
		Cache: CacheConfig{
			Enabled:     v.GetBool("cache.enabled"),
			NumCounters: v.GetInt64("cache.numCounters"),
			MaxCost:     v.GetInt64("cache.maxCost"),
		},
		Codec: CodecConfig{
			DefaultFormat: v.GetString("codec.defaultFormat"),
			MaxPayload:    v.GetInt("codec.maxPayload"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Masomo Studio")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("log.format", "text")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.bodyLimit", "4M")

	v.SetDefault("drafts.backend", "memory")
	v.SetDefault("drafts.namespace", "studio")
	v.SetDefault("drafts.ttl", 7*24*time.Hour)
	v.SetDefault("drafts.redisAddr", "localhost:6379")
	v.SetDefault("drafts.redisPassword", "")
	v.SetDefault("drafts.redisDB", 0)
	v.SetDefault("drafts.pebbleDir", filepath.Join(os.TempDir(), "masomo-drafts"))

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.numCounters", int64(100_000))
	v.SetDefault("cache.maxCost", int64(64<<20))

	v.SetDefault("codec.defaultFormat", "legacy")
	v.SetDefault("codec.maxPayload", 4<<20)
}
