package config

import (
	"log"
	"sync"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/kafka"
	"github.com/Astemirdum/court-booking/pkg/lock"
	"github.com/Astemirdum/court-booking/pkg/logger"
	"github.com/Astemirdum/court-booking/pkg/postgres"
	"github.com/Astemirdum/court-booking/pkg/rabbitmq"
	"github.com/Astemirdum/court-booking/pkg/server"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	LockLocal = "local"
	LockRedis = "redis"

	EventsNone     = "none"
	EventsKafka    = "kafka"
	EventsRabbitMQ = "rabbitmq"
)

type Config struct {
	Server   server.Config    `yaml:"server"`
	Database postgres.DB      `yaml:"db"`
	Log      logger.Log       `yaml:"log"`
	Kafka    kafka.Config     `yaml:"kafka"`
	RabbitMQ rabbitmq.Config  `yaml:"rabbitmq"`
	Redis    lock.RedisConfig `yaml:"redis"`
	Auth     auth.Config      `yaml:"auth"`

	StorageDriver string `yaml:"storageDriver" envconfig:"STORAGE_DRIVER" default:"postgres"`
	LockDriver    string `yaml:"lockDriver" envconfig:"LOCK_DRIVER" default:"local"`
	EventsDriver  string `yaml:"eventsDriver" envconfig:"EVENTS_DRIVER" default:"none"`
	// Timezone decides which calendar day is "today" for date validation.
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE" default:"UTC"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
