package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	School   SchoolConfig   `yaml:"school"`
	Grading  GradingConfig  `yaml:"grading"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	PoolSize       int           `yaml:"pool_size"`
	IngestionQueue string        `yaml:"ingestion_queue"`
	DLQSuffix      string        `yaml:"dlq_suffix"`
	ProgressTTL    time.Duration `yaml:"progress_ttl"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// SchoolConfig carries institution-level settings. Sections is the closed set
// of school sections classes and subjects belong to; it is configuration, not
// a hard-coded enum.
type SchoolConfig struct {
	Sections []string `yaml:"sections"`
	Terms    []string `yaml:"terms"`
}

// GradingConfig is the score-to-letter scale, listed from the highest band
// down. A score earns the first band whose minimum it meets; anything below
// the last band gets Fallback.
type GradingConfig struct {
	Bands    []GradeBand `yaml:"bands"`
	Fallback string      `yaml:"fallback"`
}

type GradeBand struct {
	Letter string `yaml:"letter"`
	Min    int    `yaml:"min"`
}

type WorkersConfig struct {
	Ingestion IngestionWorkerConfig `yaml:"ingestion"`
}

type IngestionWorkerConfig struct {
	Count     int `yaml:"count"`
	BatchSize int `yaml:"batch_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if len(c.School.Sections) == 0 {
		c.School.Sections = []string{"College", "Islamiyya", "Tahfeez"}
	}
	if len(c.School.Terms) == 0 {
		c.School.Terms = []string{"First Term", "Second Term", "Third Term"}
	}
	if len(c.Grading.Bands) == 0 {
		c.Grading.Bands = []GradeBand{
			{Letter: "A", Min: 75},
			{Letter: "B", Min: 65},
			{Letter: "C", Min: 50},
			{Letter: "D", Min: 45},
			{Letter: "E", Min: 40},
		}
		c.Grading.Fallback = "F"
	}
	if c.Redis.ProgressTTL == 0 {
		c.Redis.ProgressTTL = 24 * time.Hour
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
