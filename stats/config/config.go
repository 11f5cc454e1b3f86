package config

import (
	"log"
	"sync"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/kafka"
	"github.com/Astemirdum/court-booking/pkg/logger"
	"github.com/Astemirdum/court-booking/pkg/postgres"
	"github.com/Astemirdum/court-booking/pkg/server"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server   server.Config `yaml:"server"`
	Database postgres.DB   `yaml:"db"`
	Log      logger.Log    `yaml:"log"`
	Kafka    kafka.Config  `yaml:"kafka"`
	Auth     auth.Config   `yaml:"auth"`

	StorageDriver string `yaml:"storageDriver" envconfig:"STORAGE_DRIVER" default:"postgres"`
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
