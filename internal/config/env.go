package config

import (
	"os"

	"github.com/joho/godotenv"
)

const envFileName = ".env"

func initEnvFile() {
	if _, err := os.Stat(envFileName); err != nil {
		return
	}
	_ = godotenv.Load(envFileName)
}
