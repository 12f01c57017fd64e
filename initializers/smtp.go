package initializers

import (
	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	"procurement-backend/lib/smtp"
)

func InitSmtp() {
	conf := config.Conf.Smtp
	if conf.Host == "" {
		log.Warn("smtp host is not set, approval e-mails are disabled")
		return
	}
	smtp.Connect(conf.User, conf.Password, conf.Host, conf.Port, conf.From,
		conf.TLSEnabled != nil && *conf.TLSEnabled)
}
