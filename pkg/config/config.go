package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Store   StoreConfig   `mapstructure:"store"`
	Etcd    EtcdConfig    `mapstructure:"etcd"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Log     LogConfig     `mapstructure:"log"`
	Cart    CartConfig    `mapstructure:"cart"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Mail    MailConfig    `mapstructure:"mail"`
	Stripe  StripeConfig  `mapstructure:"stripe"`
	PayPal  PayPalConfig  `mapstructure:"paypal"`
}

// ServerConfig identifies this instance and hosts the gRPC health listener.
type ServerConfig struct {
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
	GRPCPort int    `mapstructure:"grpc_port"`
}

type GatewayConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects the document store: "mongo" or "memory".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type EtcdConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"`
}

type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	PoolSize   int           `mapstructure:"pool_size"`
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

type MySQLConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type MongoDBConfig struct {
	URI             string        `mapstructure:"uri"`
	Database        string        `mapstructure:"database"`
	AuditCollection string        `mapstructure:"audit_collection"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// CartConfig.MissingPolicy decides what cart update and order placement do
// when the uid has no active cart: "error" answers 404, "create" opens one.
type CartConfig struct {
	MissingPolicy string        `mapstructure:"missing_policy"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

type AuthConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	EnforceAdmin    bool   `mapstructure:"enforce_admin"`
	// GuardNotify also puts the order status notification behind the
	// admin check. Storefront clients call it without a token.
	GuardNotify bool `mapstructure:"guard_notify"`
}

type MailConfig struct {
	SendGridAPIKey string        `mapstructure:"sendgrid_api_key"`
	FromName       string        `mapstructure:"from_name"`
	FromAddress    string        `mapstructure:"from_address"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	Currency       string `mapstructure:"currency"`
	APIVersion     string `mapstructure:"api_version"`
}

type PayPalConfig struct {
	ClientID string `mapstructure:"client_id"`
	Secret   string `mapstructure:"secret"`
	Sandbox  bool   `mapstructure:"sandbox"`
	Currency string `mapstructure:"currency"`
}

// Load reads the YAML file at configPath. Values from a local .env file and
// SHOP_-prefixed environment variables (dots become underscores) override it.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		// Read config file
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "tienda-api")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 0)

	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("gateway.read_timeout", 15*time.Second)
	v.SetDefault("gateway.write_timeout", 30*time.Second)

	v.SetDefault("store.driver", "mongo")

	v.SetDefault("etcd.enabled", false)
	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("etcd.lease_ttl", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.product_ttl", 10*time.Minute)

	v.SetDefault("mysql.enabled", false)
	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "tienda")
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.max_open_conns", 20)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongodb.database", "tienda")
	v.SetDefault("mongodb.audit_collection", "audit_logs")
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("cart.missing_policy", "error")
	v.SetDefault("cart.lock_ttl", 5*time.Second)

	v.SetDefault("auth.project_id", "")
	v.SetDefault("auth.credentials_file", "")
	v.SetDefault("auth.enforce_admin", true)
	v.SetDefault("auth.guard_notify", false)

	v.SetDefault("mail.sendgrid_api_key", "")
	v.SetDefault("mail.from_name", "Tienda")
	v.SetDefault("mail.from_address", "")
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.publishable_key", "")
	v.SetDefault("stripe.currency", "mxn")
	v.SetDefault("stripe.api_version", "2023-10-16")

	v.SetDefault("paypal.client_id", "")
	v.SetDefault("paypal.secret", "")
	v.SetDefault("paypal.sandbox", true)
	v.SetDefault("paypal.currency", "MXN")
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("invalid store.driver %q: want mongo or memory", c.Store.Driver)
	}
	switch c.Cart.MissingPolicy {
	case "error", "create":
	default:
		return fmt.Errorf("invalid cart.missing_policy %q: want error or create", c.Cart.MissingPolicy)
	}
	if c.Gateway.Port <= 0 {
		return fmt.Errorf("invalid gateway.port %d", c.Gateway.Port)
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}
