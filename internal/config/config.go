package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Repository backends
const (
	RepoCSV    = "csv"
	RepoSQLite = "sqlite"
	RepoMemory = "memory"
)

// Config holds the server configuration
type Config struct {
	GRPCPort int    `mapstructure:"grpc_port"`
	HTTPPort int    `mapstructure:"http_port"`
	RepoType string `mapstructure:"repo_type"` // "csv" | "sqlite" | "memory"
	DataFile string `mapstructure:"data_file"` // CSV store path (RepoType=csv)
	DBPath   string `mapstructure:"db_path"`   // SQLite file path (RepoType=sqlite)

	ReportDir string `mapstructure:"report_dir"`
	LogLevel  string `mapstructure:"log_level"`

	// Synthetic data written once when the store is empty
	SeedOnStart bool  `mapstructure:"seed_on_start"`
	Seed        int64 `mapstructure:"seed"`
	SeedDays    int   `mapstructure:"seed_days"`

	TLSCert string `mapstructure:"tls_cert"` // path to this service's certificate
	TLSKey  string `mapstructure:"tls_key"`  // path to this service's private key
	TLSCA   string `mapstructure:"tls_ca"`   // path to the CA certificate

	ConfigFile string `mapstructure:"-"`
}

// Load builds the configuration from defaults, an optional YAML file,
// environment variables (GRPC_PORT, REPO_TYPE, DATA_FILE, ...) and args,
// later sources taking precedence.
func Load(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("grpc_port", 50051)
	v.SetDefault("http_port", 8080)
	v.SetDefault("repo_type", RepoCSV)
	v.SetDefault("data_file", "data/mesin_log.csv")
	v.SetDefault("db_path", "./engine.db")
	v.SetDefault("report_dir", "output")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed_on_start", false)
	v.SetDefault("seed", 42)
	v.SetDefault("seed_days", 30)
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("tls_ca", "")

	fs := pflag.NewFlagSet("engine-monitor", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.IntP("grpc_port", "g", v.GetInt("grpc_port"), "gRPC listen port.")
	fs.IntP("http_port", "p", v.GetInt("http_port"), "HTTP listen port.")
	fs.StringP("repo_type", "r", v.GetString("repo_type"), "Store backend (csv, sqlite, memory).")
	fs.StringP("data_file", "f", v.GetString("data_file"), "CSV store file.")
	fs.String("db_path", v.GetString("db_path"), "SQLite database file.")
	fs.StringP("report_dir", "o", v.GetString("report_dir"), "Directory for exported reports.")
	fs.StringP("log_level", "v", v.GetString("log_level"), "Log verbosity level (debug, info, warn, error).")
	fs.Bool("seed_on_start", v.GetBool("seed_on_start"), "Generate synthetic readings when the store is empty.")
	fs.Int64("seed", v.GetInt64("seed"), "Seed for synthetic readings.")
	fs.Int("seed_days", v.GetInt("seed_days"), "Days of synthetic readings to seed.")
	fs.String("tls_cert", "", "Server certificate (enables mTLS).")
	fs.String("tls_key", "", "Server private key.")
	fs.String("tls_ca", "", "CA certificate for client verification.")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind pflags: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/engine-monitor/")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.RepoType = strings.ToLower(cfg.RepoType)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.RepoType {
	case RepoCSV, RepoSQLite, RepoMemory:
	default:
		return fmt.Errorf("unknown repo_type %q", c.RepoType)
	}
	if c.SeedDays <= 0 {
		return fmt.Errorf("seed_days must be positive, got %d", c.SeedDays)
	}
	if c.TLSCert != "" && (c.TLSKey == "" || c.TLSCA == "") {
		return errors.New("tls_cert requires tls_key and tls_ca")
	}
	return nil
}
