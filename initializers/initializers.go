package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	"procurement-backend/fiberlog"
	approvalchainhandler "procurement-backend/lib/approval-chain"
	approvalreminderworker "procurement-backend/lib/approval-reminder"
	xlsexport "procurement-backend/lib/export/xls"
	filestorage "procurement-backend/lib/file-storage"
	"procurement-backend/lib/metrics"
	"procurement-backend/lib/notify"
	prnumber "procurement-backend/lib/pr-number"
	prhandler "procurement-backend/lib/purchase-request"
	initchecker "procurement-backend/lib/utils/init-checker"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

// InitAllServices wires every package-level instance used by the API.
func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	SetLogLevel(config.Conf.App.LogLevel)
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	InitNumberAllocator(ctx)
	InitPublisher()
	xlsexport.NewHandler()
	prhandler.NewHandler()
	approvalchainhandler.NewHandler()

	err := initchecker.Check(
		initchecker.Require("file storage", filestorage.Instance),
		initchecker.Require("xlsx export", xlsexport.Instance),
		initchecker.Require("pr number allocator", prnumber.Instance),
		initchecker.Require("event publisher", notify.Instance),
		initchecker.Require("event feed hub", connectionhub.Instance),
		initchecker.Require("metrics", metrics.Instance),
		initchecker.Require("purchase request handler", prhandler.Instance),
		initchecker.Require("approval chain handler", approvalchainhandler.Instance),
	)
	if err != nil {
		panic(err.Error())
	}
}

// InitCommandServices wires what the one-shot CLI commands need: no HTTP, no workers.
func InitCommandServices() {
	InitLogger()
	config.InitConfig()
	SetLogLevel(config.Conf.App.LogLevel)
	InitDBConnection()
	InitSmtp()
	prhandler.NewHandler()
	approvalchainhandler.NewHandler()
}

func InitWorkers(ctx context.Context) {
	if config.Conf.Reminder.Enabled == nil || !*config.Conf.Reminder.Enabled {
		log.Info("approval reminder worker disabled")
		return
	}
	approvalreminderworker.StartWorker(ctx)
}
