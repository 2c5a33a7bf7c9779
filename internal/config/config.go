package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sladash/sladash/internal/domain"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Logging  LoggingConfig  `json:"logging"`
	Auth     AuthConfig     `json:"auth"`
	SLA      SLAConfig      `json:"sla"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"dbname"`
	SSLMode        string        `json:"sslmode"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// RedisConfig represents the report cache configuration
type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// AuthConfig represents dashboard authentication configuration
type AuthConfig struct {
	Enabled       bool          `json:"enabled"`
	Username      string        `json:"username"`
	PasswordHash  string        `json:"password_hash"` // bcrypt
	JWTSecret     string        `json:"jwt_secret"`
	JWTExpiration time.Duration `json:"jwt_expiration"`
}

// SLAConfig represents the SLA engine configuration
type SLAConfig struct {
	// BuiltinTable selects the fallback criticality-severity table used
	// when a dataset carries no mapping artifact: "tiered" or "flat".
	BuiltinTable string `json:"builtin_table"`

	// MappingUnit is the unit of the external mapping's duration cells.
	MappingUnit string `json:"mapping_unit"` // days, hours

	// WindowHours is the calendar-window denominator applied when no
	// month filter pins down the reporting month (744 = 31 days).
	WindowHours float64 `json:"window_hours"`

	// TopN is the default ranking depth.
	TopN int `json:"top_n"`

	// RegionName and RegionLocations define the regional filter set.
	RegionName      string   `json:"region_name"`
	RegionLocations []string `json:"region_locations"`
}

// Load loads configuration from environment variables and defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "sladash"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_REPORT_TTL", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Enabled:       getEnvBool("AUTH_ENABLED", false),
			Username:      getEnv("AUTH_USERNAME", "admin"),
			PasswordHash:  getEnv("AUTH_PASSWORD_HASH", ""),
			JWTSecret:     getEnv("JWT_SECRET", ""),
			JWTExpiration: getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		SLA: SLAConfig{
			BuiltinTable:    getEnv("SLA_BUILTIN_TABLE", "tiered"),
			MappingUnit:     getEnv("SLA_MAPPING_UNIT", "days"),
			WindowHours:     getEnvFloat("SLA_WINDOW_HOURS", 744),
			TopN:            getEnvInt("SLA_RANKING_TOP_N", 3),
			RegionName:      getEnv("SLA_REGION_NAME", "Regional 3"),
			RegionLocations: getEnvSlice("SLA_REGION_LOCATIONS", defaultRegionLocations()),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	switch c.SLA.BuiltinTable {
	case "tiered", "flat":
	default:
		return fmt.Errorf("unknown built-in SLA table: %s", c.SLA.BuiltinTable)
	}

	switch domain.DurationUnit(c.SLA.MappingUnit) {
	case domain.UnitDays, domain.UnitHours:
	default:
		return fmt.Errorf("unknown mapping unit: %s", c.SLA.MappingUnit)
	}

	if c.SLA.WindowHours <= 0 {
		return fmt.Errorf("calendar window hours must be positive")
	}

	if c.Auth.Enabled {
		if c.Auth.PasswordHash == "" {
			return fmt.Errorf("auth password hash is required when auth is enabled")
		}
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required when auth is enabled")
		}
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis host:port address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// BuiltinSLATable returns the configured fallback SLA table
func (c *Config) BuiltinSLATable() domain.SLATable {
	if c.SLA.BuiltinTable == "flat" {
		return domain.FlatSLATable()
	}
	return domain.TieredSLATable()
}

// MappingUnit returns the configured external mapping duration unit
func (c *Config) MappingUnit() domain.DurationUnit {
	return domain.DurationUnit(c.SLA.MappingUnit)
}

// RegionSet returns the configured regional location set
func (c *Config) RegionSet() domain.LocationSet {
	return domain.NewLocationSet(c.SLA.RegionName, c.SLA.RegionLocations)
}

// defaultRegionLocations is the Regional 3 reporter-location list used
// by the operations team; override with SLA_REGION_LOCATIONS.
func defaultRegionLocations() []string {
	raw := "P. Lembar,Regional 3,P. Batulicin,R. Jawa,Terminal Celukan Bawang,Sub Regional BBN," +
		"P. Tg. Emas,P. Bumiharjo,Tanjung Perak,R. Bali Nusra,P. Badas,TANJUNGPERAK," +
		"TANJUNGEMAS/KEUANGAN,TANJUNGEMAS,P. Tg. Intan,BANJARMASIN/TPK,KOTABARU/MEKARPUTIH," +
		"P. Waingapu,R. Kalimantan,Terminal Nilam,Terminal Kumai,P. Kalimas,P. Tg. Wangi," +
		"P. Gresik,P. Kotabaru,BANJARMASIN/KOMERSIAL,TANJUNGWANGI/TEKNIK,Sub Regional Kalimantan," +
		"GRESIK/TERMINAL,Terminal Kota Baru,P. Sampit,BANJARMASIN/TMP,P. Bagendang,BANJARMASIN/PDS," +
		"TENAU/KALABAHI,P. Bima,P. Tenau Kupang,Terminal Lembar,P. Tegal,Terminal Trisakti," +
		"BENOA/OPKOM,P. Benoa,BANJARMASIN/TEKNIK,BANJARMASIN/PBJ,TANJUNGINTAN,KOTABARU,TENAU," +
		"Sub Regional Jawa Timur,KUMAI/OPKOM,Terminal Batulicin,Terminal Gresik,KUMAI/KEUPER," +
		"LEMBAR/KEUPER,P. Kalabahi,BIMA/BADAS,Terminal Jamrud,TENAU/WAINGAPU,Terminal Benoa," +
		"P. Tg. Tembaga,BIMA/PDS,BENOA/SUK,P. Clk. Bawang,KUMAI/BUMIHARJO,P. Pulang Pisau," +
		"Terminal Labuan Bajo,P. Maumere,BENOA/KEUANGAN,BENOA/PKWT,Terminal Kalimas," +
		"BANJARMASIN/KEUANGAN,BENOA/PEMAGANG,GRESIK/KEUANGAN,Terminal Petikemas Banjarmasin," +
		"CELUKANBAWANG,P. Ende-Ippi,SAMPIT/BAGENDANG,Terminal Bima,KOTABARU/KEPANDUAN," +
		"Terminal Sampit,Terminal Kupang,BENOA/TEKNIK,Terminal Maumere,PROBOLINGGO/PLS," +
		"SAMPIT/PKWT,P. Labuan Bajo,P. Kalianget,Banjarmasin,Terminal Waingapu,MAUMERE/ENDE"
	return strings.Split(raw, ",")
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
