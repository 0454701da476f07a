package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Loader reads the YAML configuration file and resolves it into a
// domain.Config with defaults and environment expansion applied.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch", false)
	v.SetDefault("recommender.provider", domain.DefaultRecommenderProvider)
	v.SetDefault("recommender.model", domain.DefaultRecommenderModel)
	v.SetDefault("recommender.apiKeyEnvVar", domain.DefaultGeminiAPIKeyEnvVar)
	v.SetDefault("recommender.timeoutSeconds", domain.DefaultRecommenderTimeoutSeconds)
	v.SetDefault("recommender.assessUpdates", true)
	v.SetDefault("registry.enabled", false)
	v.SetDefault("registry.apiKeyEnvVar", domain.DefaultRegistryAPIKeyEnvVar)
	v.SetDefault("registry.timeoutSeconds", domain.DefaultRegistryTimeoutSeconds)
	v.SetDefault("registry.pageLimit", domain.DefaultRegistryPageLimit)
	v.SetDefault("transport.mode", domain.DefaultTransportMode)
	v.SetDefault("transport.listenAddress", domain.DefaultHTTPListenAddress)
	v.SetDefault("transport.path", domain.DefaultHTTPPath)
	v.SetDefault("transport.jsonResponse", false)
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
}

type rawConfig struct {
	ScanDirectory string                 `mapstructure:"scanDirectory"`
	Watch         bool                   `mapstructure:"watch"`
	CachePath     string                 `mapstructure:"cachePath"`
	Recommender   rawRecommenderConfig   `mapstructure:"recommender"`
	Registry      rawRegistryConfig      `mapstructure:"registry"`
	Transport     rawTransportConfig     `mapstructure:"transport"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
}

type rawRecommenderConfig struct {
	Provider       string `mapstructure:"provider"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"apiKey"`
	APIKeyEnvVar   string `mapstructure:"apiKeyEnvVar"`
	BaseURL        string `mapstructure:"baseURL"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	AssessUpdates  bool   `mapstructure:"assessUpdates"`
}

type rawRegistryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"baseURL"`
	APIKeyEnvVar   string `mapstructure:"apiKeyEnvVar"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	PageLimit      int    `mapstructure:"pageLimit"`
}

type rawTransportConfig struct {
	Mode          string `mapstructure:"mode"`
	ListenAddress string `mapstructure:"listenAddress"`
	Path          string `mapstructure:"path"`
	Token         string `mapstructure:"token"`
	JSONResponse  bool   `mapstructure:"jsonResponse"`
}

type rawObservabilityConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ListenAddress string `mapstructure:"listenAddress"`
}

// Load resolves the configuration. An empty path yields the defaults, so
// the server can run on environment variables alone.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	v := newConfigViper()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Config{}, domain.E(domain.CodeNotFound, "config.load",
				"read config: "+path, err)
		}
		expanded, missing, err := expandEnv(data)
		if err != nil {
			return domain.Config{}, domain.E(domain.CodeParse, "config.load",
				"expand config: "+path, err)
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config",
				zap.String("path", path),
				zap.Strings("missing", missing))
		}
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return domain.Config{}, domain.E(domain.CodeParse, "config.load",
				fmt.Sprintf("parse config %s", path), err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, domain.E(domain.CodeParse, "config.load", "decode config", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}
	return normalize(raw), nil
}

func normalize(raw rawConfig) domain.Config {
	scanDir := strings.TrimSpace(raw.ScanDirectory)
	if scanDir == "" {
		scanDir = strings.TrimSpace(os.Getenv(domain.ScanDirectoryEnvVar))
	}

	mode := strings.ToLower(strings.TrimSpace(raw.Transport.Mode))
	if mode == "" {
		mode = domain.DefaultTransportMode
	}

	return domain.Config{
		ScanDirectory: scanDir,
		Watch:         raw.Watch,
		CachePath:     strings.TrimSpace(raw.CachePath),
		Recommender: domain.RecommenderConfig{
			Provider:       strings.ToLower(strings.TrimSpace(raw.Recommender.Provider)),
			Model:          strings.TrimSpace(raw.Recommender.Model),
			APIKey:         strings.TrimSpace(raw.Recommender.APIKey),
			APIKeyEnvVar:   strings.TrimSpace(raw.Recommender.APIKeyEnvVar),
			BaseURL:        strings.TrimSpace(raw.Recommender.BaseURL),
			TimeoutSeconds: raw.Recommender.TimeoutSeconds,
			AssessUpdates:  raw.Recommender.AssessUpdates,
		},
		Registry: domain.RegistryConfig{
			Enabled:        raw.Registry.Enabled,
			BaseURL:        strings.TrimSpace(raw.Registry.BaseURL),
			APIKeyEnvVar:   strings.TrimSpace(raw.Registry.APIKeyEnvVar),
			TimeoutSeconds: raw.Registry.TimeoutSeconds,
			PageLimit:      raw.Registry.PageLimit,
		},
		Transport: domain.TransportConfig{
			Mode:         mode,
			HTTPAddr:     strings.TrimSpace(raw.Transport.ListenAddress),
			HTTPPath:     strings.TrimSpace(raw.Transport.Path),
			HTTPToken:    strings.TrimSpace(raw.Transport.Token),
			JSONResponse: raw.Transport.JSONResponse,
		},
		Observability: domain.ObservabilityConfig{
			Enabled:       raw.Observability.Enabled,
			ListenAddress: strings.TrimSpace(raw.Observability.ListenAddress),
		},
	}
}
