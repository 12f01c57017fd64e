package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
		BodyLimit  int    `default:"12582912" env:"APP_BODY_LIMIT"` // attachment limit plus multipart overhead
		LogLevel   string `default:"info" env:"APP_LOG_LEVEL"`
		ErrNotify  string `default:"" env:"APP_ERR_NOTIFY_URL"` // webhook for 5xx responses, off when empty
	}
	Auth struct {
		JWTSecret string `default:"" env:"JWT_SECRET"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"procurement" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"pr-attachments" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string `default:"procurement@localhost" env:"SMTP_FROM"`
	}
	Redis struct {
		Enabled *bool  `default:"false" env:"REDIS_ENABLED"`
		URL     string `default:"redis://127.0.0.1:6379/0" env:"REDIS_URL"`
	}
	Kafka struct {
		Enabled *bool    `default:"false" env:"KAFKA_ENABLED"`
		Brokers []string `default:"[127.0.0.1:9092]" env:"KAFKA_BROKERS"`
		Topic   string   `default:"procurement.pr.events" env:"KAFKA_TOPIC"`
	}
	Workflow struct {
		NumberAllocator string `default:"count" env:"PR_NUMBER_ALLOCATOR"` // count | redis
		LockWaitSec     int    `default:"5" env:"PR_LOCK_WAIT_SEC"`
		CreateRetries   int    `default:"3" env:"PR_CREATE_RETRIES"`
	}
	Reminder struct {
		Enabled          *bool `default:"false" env:"REMINDER_ENABLED"`
		FirstRunDelayMin int   `default:"1" env:"REMINDER_FIRST_RUN_DELAY_MIN"`
		IntervalMin      int   `default:"60" env:"REMINDER_INTERVAL_MIN"`
		MaxReminders     int   `default:"3" env:"REMINDER_MAX_PER_APPROVAL"`
		BatchSize        int   `default:"100" env:"REMINDER_BATCH_SIZE"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
