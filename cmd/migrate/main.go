// Command migrate applies the embedded SQL migrations.
package main

import (
	"flag"

	"github.com/spf13/viper"

	"github.com/miguelmartinez95/rest-api-project/internal/db/migrate"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	utils.InitLogger("stores-api-migrate")

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	dsn := v.GetString("DATABASE_URL")
	if dsn == "" {
		utils.Logger.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(dsn, *direction); err != nil {
		utils.Logger.WithError(err).Fatal("Migration failed")
	}
	utils.Logger.Infof("Migrations applied (%s)", *direction)
}
