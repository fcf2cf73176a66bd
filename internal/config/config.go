// Package config loads the demo program's settings from an optional config
// file, a .env file and ECLI_* environment variables, and turns them into an
// engine configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"embeddedcli/internal/logger"
	"embeddedcli/pkg/embeddedcli"
)

// EnvPrefix is prepended to every key when read from the environment, so
// rx_buffer_size is ECLI_RX_BUFFER_SIZE.
const EnvPrefix = "ECLI"

// Configuration keys.
const (
	KeyInvitation          = "invitation"
	KeyRxBufferSize        = "rx_buffer_size"
	KeyCmdBufferSize       = "cmd_buffer_size"
	KeyHistoryBufferSize   = "history_buffer_size"
	KeyMaxBindingCount     = "max_binding_count"
	KeyStaticBuffer        = "static_buffer"
	KeyAutoComplete        = "auto_complete"
	KeyColorOutput         = "color_output"
	KeySubInterpreterDepth = "sub_interpreter_depth"
	KeyManifest            = "manifest"
	KeyTick                = "tick"
)

// ErrInvalidSetting is returned for values that parse but cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings is the effective demo configuration.
type Settings struct {
	Invitation          string
	RxBufferSize        int
	CmdBufferSize       int
	HistoryBufferSize   int
	MaxBindingCount     int
	StaticBuffer        bool
	AutoComplete        bool
	ColorOutput         bool
	SubInterpreterDepth int

	// Manifest is the path of the command manifest; empty selects the
	// built-in one.
	Manifest string

	// Tick is the period of the processing loop.
	Tick time.Duration
}

// NewViper returns a viper instance with defaults matching
// embeddedcli.DefaultConfig and environment lookup enabled. Callers may bind
// flags to it before calling Load.
func NewViper() *viper.Viper {
	def := embeddedcli.DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyInvitation, def.Invitation)
	v.SetDefault(KeyRxBufferSize, def.RxBufferSize)
	v.SetDefault(KeyCmdBufferSize, def.CmdBufferSize)
	v.SetDefault(KeyHistoryBufferSize, def.HistoryBufferSize)
	v.SetDefault(KeyMaxBindingCount, def.MaxBindingCount)
	v.SetDefault(KeyStaticBuffer, false)
	v.SetDefault(KeyAutoComplete, def.AutoComplete)
	v.SetDefault(KeyColorOutput, def.ColorOutput)
	v.SetDefault(KeySubInterpreterDepth, def.SubInterpreterDepth)
	v.SetDefault(KeyManifest, "")
	v.SetDefault(KeyTick, 10*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or ecli.{yaml,toml,json} from the working directory
// when empty) into v and returns the resulting settings. A missing default
// config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ecli")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		logger.Debug("Config file loaded", "path", v.ConfigFileUsed())
	}

	s := &Settings{
		Invitation:          v.GetString(KeyInvitation),
		RxBufferSize:        v.GetInt(KeyRxBufferSize),
		CmdBufferSize:       v.GetInt(KeyCmdBufferSize),
		HistoryBufferSize:   v.GetInt(KeyHistoryBufferSize),
		MaxBindingCount:     v.GetInt(KeyMaxBindingCount),
		StaticBuffer:        v.GetBool(KeyStaticBuffer),
		AutoComplete:        v.GetBool(KeyAutoComplete),
		ColorOutput:         v.GetBool(KeyColorOutput),
		SubInterpreterDepth: v.GetInt(KeySubInterpreterDepth),
		Manifest:            v.GetString(KeyManifest),
		Tick:                v.GetDuration(KeyTick),
	}
	if s.Tick <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidSetting, KeyTick, s.Tick)
	}
	return s, nil
}

// LoadDotEnv exports the ECLI_* entries of a .env file into the process
// environment. Variables that are already set win. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	for key, value := range envMap {
		if !strings.HasPrefix(key, EnvPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
	}
	return nil
}

// EngineConfig converts the settings into an engine configuration. With
// StaticBuffer set, the backing region is allocated here and handed to the
// engine, the way firmware passes a static array.
func (s *Settings) EngineConfig() embeddedcli.Config {
	cfg := embeddedcli.Config{
		Invitation:          s.Invitation,
		RxBufferSize:        s.RxBufferSize,
		CmdBufferSize:       s.CmdBufferSize,
		HistoryBufferSize:   s.HistoryBufferSize,
		MaxBindingCount:     s.MaxBindingCount,
		AutoComplete:        s.AutoComplete,
		ColorOutput:         s.ColorOutput,
		SubInterpreterDepth: s.SubInterpreterDepth,
	}
	if s.StaticBuffer {
		cfg.Buffer = make([]byte, embeddedcli.RequiredSize(cfg))
	}
	return cfg
}
