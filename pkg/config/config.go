package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	DB    DBConfig    `mapstructure:"db"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	Vault VaultConfig `mapstructure:"vault"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type VaultConfig struct {
	// OwnerPrincipal 金库自身在外部账本上的主体标识。
	// 所有用户的存款地址都以它为 owner, 只靠子账户区分用户。
	OwnerPrincipal string `mapstructure:"owner_principal"`
	// LedgerURL 外部账本服务地址
	LedgerURL string `mapstructure:"ledger_url"`
	// WithdrawFee 固定提现手续费 (基础单位), 从提现金额中扣除而不是额外收取
	WithdrawFee string `mapstructure:"withdraw_fee"`
	// LedgerTimeout 单次账本调用的有界等待时间
	LedgerTimeout time.Duration `mapstructure:"ledger_timeout"`
	// SnapshotInterval 注册表快照落库间隔
	SnapshotInterval string `mapstructure:"snapshot_interval"`
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath(".")      // optionally look for config in the working directory
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if desired
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			// Config file was found but another error was produced
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "vault_user")
	viper.SetDefault("db.password", "vault_password")
	viper.SetDefault("db.name", "vault_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("vault.owner_principal", "vault-main")
	viper.SetDefault("vault.ledger_url", "http://localhost:9090")
	// 默认手续费沿用账本的标准转账费: 10000 基础单位
	viper.SetDefault("vault.withdraw_fee", "10000")
	viper.SetDefault("vault.ledger_timeout", "10s")
	viper.SetDefault("vault.snapshot_interval", "@every 1m")
}
