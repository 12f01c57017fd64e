package initializers

import (
	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	"procurement-backend/lib/notify"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
)

// InitPublisher sends workflow events to Kafka, or to the log when Kafka is off, and always
// to the websocket event feed.
func InitPublisher() {
	connectionhub.Init()
	conf := config.Conf.Kafka
	if conf.Enabled == nil || !*conf.Enabled {
		notify.Instance = notify.NewMultiPublisher(notify.NewLogPublisher(), connectionhub.Instance)
		return
	}
	publisher, err := notify.NewKafkaPublisher(conf.Brokers, conf.Topic)
	if err != nil {
		panic(err.Error())
	}
	notify.Instance = notify.NewMultiPublisher(publisher, connectionhub.Instance)
	log.WithField("topic", conf.Topic).Info("kafka event publisher initialized")
}

func ClosePublisher() {
	if notify.Instance != nil {
		notify.Instance.Close()
	}
}
