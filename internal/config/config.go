package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	S3          S3Config          `mapstructure:"s3"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Certificate CertificateConfig `mapstructure:"certificate"`
	Sandbox     SandboxConfig     `mapstructure:"sandbox"`
	Notify      NotifyConfig      `mapstructure:"notify"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// CertificateConfig bounds certificate generation. RenderTimeout caps the
// HTML-to-PDF conversion; on timeout nothing is stored under the cache key.
type CertificateConfig struct {
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
}

// SandboxConfig configures the background sandbox provisioning dispatcher.
type SandboxConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// NotifyConfig configures the outbound notification port. When Enabled is
// false a no-op notifier is wired instead of SendGrid.
type NotifyConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SendGridKey string `mapstructure:"sendgrid_key"`
	FromName    string `mapstructure:"from_name"`
	FromEmail   string `mapstructure:"from_email"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "course_app")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("certificate.render_timeout", "30s")
	viper.SetDefault("sandbox.queue_size", 64)
	viper.SetDefault("sandbox.timeout", "30s")
	viper.SetDefault("notify.enabled", false)

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// If the config file is missing we proceed on defaults and env vars.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// --- Unmarshal Config ---
	err = viper.Unmarshal(&config)
	return
}
