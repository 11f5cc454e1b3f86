package main

import (
	stdLog "log"
	"os"

	"github.com/Astemirdum/court-booking/stats/app"
	"github.com/Astemirdum/court-booking/stats/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	cfg := config.NewConfig(config.WithLogLevel(zapcore.DebugLevel))

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal(err)
	}
}
