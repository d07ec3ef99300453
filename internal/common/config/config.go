// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Integrations IntegrationConfig  `mapstructure:"integrations"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

// TracingConfig holds distributed tracing settings. An empty endpoint leaves
// the no-op tracer installed.
type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// EngineConfig holds settings for the appraiser engine itself.
type EngineConfig struct {
	// RatebookPath points at an override ratebook JSON file. Empty means the
	// embedded calibrated defaults are used.
	RatebookPath string `mapstructure:"ratebook_path"`

	// ResultCacheTTL controls how long identical-input results are cached, in
	// seconds. Zero disables caching.
	ResultCacheTTL int `mapstructure:"result_cache_ttl"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetMigrateURL returns the DSN in URL form for golang-migrate.
func (p PostgresConfig) GetMigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig holds settings for the asynchronous evaluation queue.
type QueueConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Key         string `mapstructure:"key"`
	Workers     int    `mapstructure:"workers"`
	PollTimeout int    `mapstructure:"poll_timeout"` // milliseconds
	MaxRetries  int    `mapstructure:"max_retries"`
}

// AuthConfig holds optional bearer-token auth for the API. Empty secret
// disables auth.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// IntegrationConfig holds settings for outbound collaborator fan-out.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			ToEmail   string `mapstructure:"to_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	// ReportWebhook receives the full structured result for narrative/report
	// rendering. Empty URL disables delivery.
	ReportWebhook struct {
		URL     string `mapstructure:"url"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"report_webhook"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
