package whitelabel

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
)

type configContextKey string

func (c configContextKey) String() string {
	return "whitelabel/config/" + string(c)
}

const ctxKeyConfiguration = configContextKey("configurationKey")

// ConfigToContext adds service configuration to the current supplied context.
func ConfigToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// ConfigFromContext extracts service configuration from the supplied context if any exist.
func ConfigFromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// ConfigFromEnv convenience method to process configs.
func ConfigFromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// ConfigFillEnv convenience method to fill a config object with environment data.
func ConfigFillEnv(v any) error {
	return env.Parse(v)
}

type ConfigurationDefault struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	ServiceName        string `envDefault:"" env:"SERVICE_NAME"        yaml:"service_name"`
	ServiceEnvironment string `envDefault:"" env:"SERVICE_ENVIRONMENT" yaml:"service_environment"`
	ServiceVersion     string `envDefault:"" env:"SERVICE_VERSION"     yaml:"service_version"`

	HTTPServerPort string `envDefault:":8080" env:"HTTP_PORT" yaml:"http_server_port"`

	// Brand selection is a build/deploy time decision, never read ad hoc
	// inside business logic. The value is threaded into the resolvers at
	// startup.
	ActiveBrandID  string `envDefault:"brand-a" env:"BRAND_ID"    yaml:"active_brand_id"`
	BrandTablePath string `envDefault:""        env:"BRANDS_PATH" yaml:"brand_table_path"`

	TranslationsDir       string   `envDefault:"localization" env:"TRANSLATIONS_DIR"      yaml:"translations_dir"`
	TranslationLanguages  []string `envDefault:"en,de,it"     env:"TRANSLATION_LANGUAGES" yaml:"translation_languages"`

	CacheURL string `envDefault:"" env:"CACHE_URL" yaml:"cache_url"`

	StoreLatency       string `envDefault:"50ms" env:"STORE_LATENCY"       yaml:"store_latency"`
	RevalidateInterval string `envDefault:"30s"  env:"REVALIDATE_INTERVAL" yaml:"revalidate_interval"`

	InvalidationWorkers int `envDefault:"8" env:"INVALIDATION_WORKERS" yaml:"invalidation_workers"`
}

type ConfigurationService interface {
	Name() string
	Environment() string
	Version() string
}

var _ ConfigurationService = new(ConfigurationDefault)

func (c *ConfigurationDefault) Name() string {
	return c.ServiceName
}

func (c *ConfigurationDefault) Environment() string {
	return c.ServiceEnvironment
}

func (c *ConfigurationDefault) Version() string {
	return c.ServiceVersion
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

type ConfigurationPorts interface {
	HTTPPort() string
}

var _ ConfigurationPorts = new(ConfigurationDefault)

func (c *ConfigurationDefault) HTTPPort() string {
	return c.HTTPServerPort
}

type ConfigurationBranding interface {
	BrandID() string
	BrandsTablePath() string
}

var _ ConfigurationBranding = new(ConfigurationDefault)

func (c *ConfigurationDefault) BrandID() string {
	return c.ActiveBrandID
}

func (c *ConfigurationDefault) BrandsTablePath() string {
	return c.BrandTablePath
}

type ConfigurationLocalization interface {
	TranslationsFolder() string
	Languages() []string
}

var _ ConfigurationLocalization = new(ConfigurationDefault)

func (c *ConfigurationDefault) TranslationsFolder() string {
	return c.TranslationsDir
}

func (c *ConfigurationDefault) Languages() []string {
	return c.TranslationLanguages
}

type ConfigurationCache interface {
	CacheURI() string
}

var _ ConfigurationCache = new(ConfigurationDefault)

func (c *ConfigurationDefault) CacheURI() string {
	return c.CacheURL
}

type ConfigurationStore interface {
	GetStoreLatency() time.Duration
}

var _ ConfigurationStore = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetStoreLatency() time.Duration {
	latency, err := time.ParseDuration(c.StoreLatency)
	if err != nil {
		return 0
	}
	return latency
}

type ConfigurationRender interface {
	GetRevalidateInterval() time.Duration
}

var _ ConfigurationRender = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetRevalidateInterval() time.Duration {
	interval, err := time.ParseDuration(c.RevalidateInterval)
	if err != nil {
		return 0
	}
	return interval
}
