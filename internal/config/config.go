package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	MySQL     MySQLConfig
	Discovery DiscoveryConfig
	Users     UsersConfig
	Payments  PaymentsConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

type MySQLConfig struct {
	Host         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the connection string for the gorm MySQL dialector.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = c.Host
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Discovery modes
const (
	DiscoveryRedis  = "redis"
	DiscoveryStatic = "static"
)

type DiscoveryConfig struct {
	Mode string
	// ServiceName is the name this instance registers under.
	ServiceName string
	// InstanceURL is the base URL other services reach this instance at.
	InstanceURL string
	TTL         time.Duration
	// StaticUsersURL is the users-service base URL used in static mode.
	StaticUsersURL string
}

type UsersConfig struct {
	ServiceName   string
	AccountAPIURL string
	Timeout       time.Duration
}

type PaymentsConfig struct {
	DeleteSelection   string
	ResolveOriginUser bool
}

func Load() *Config {
	port := getEnv("SERVER_PORT", "8072")

	return &Config{
		Server: ServerConfig{
			Port: port,
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 100),
		},
		MySQL: MySQLConfig{
			Host:         getEnv("MYSQL_HOST", "localhost:3306"),
			User:         getEnv("MYSQL_USER", "payments"),
			Password:     getEnv("MYSQL_PASSWORD", "payments123"),
			Database:     getEnv("MYSQL_DATABASE", "payments"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 10),
		},
		Discovery: DiscoveryConfig{
			Mode:           strings.ToLower(getEnv("DISCOVERY_MODE", DiscoveryRedis)),
			ServiceName:    getEnv("DISCOVERY_SERVICE_NAME", "payments-microservice"),
			InstanceURL:    getEnv("DISCOVERY_INSTANCE_URL", "http://localhost:"+port),
			TTL:            getEnvAsDuration("DISCOVERY_TTL", 30*time.Second),
			StaticUsersURL: getEnv("USERS_SERVICE_URL", ""),
		},
		Users: UsersConfig{
			ServiceName:   getEnv("USERS_SERVICE_NAME", "users-microservice"),
			AccountAPIURL: getEnv("USERS_API_URL", "http://api-users-url"),
			Timeout:       getEnvAsDuration("USERS_HTTP_TIMEOUT", 5*time.Second),
		},
		Payments: PaymentsConfig{
			DeleteSelection:   getEnv("DELETE_SELECTION_POLICY", "latest"),
			ResolveOriginUser: getEnvAsBool("RESOLVE_ORIGIN_USER", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
