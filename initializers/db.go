package initializers

import (
	"procurement-backend/config"
	"procurement-backend/db"
)

func InitDBConnection() {
	conf := config.Conf.Database
	err := db.Connect(conf.Host, conf.Port, conf.Name, conf.User, conf.Password,
		conf.DebugMode != nil && *conf.DebugMode, conf.MigrateOnStart != nil && *conf.MigrateOnStart)
	if err != nil {
		panic(err.Error())
	}
}
