package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"procurement-backend/config"
	"procurement-backend/db"
	"procurement-backend/initializers"
	approvalchainhandler "procurement-backend/lib/approval-chain"
	prhandler "procurement-backend/lib/purchase-request"
	authutils "procurement-backend/lib/utils/auth-utils"
	prapimodels "procurement-backend/models/api/purchase-request"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			initializers.InitLogger()
			config.InitConfig()
			conf := config.Conf.Database
			err := db.Connect(conf.Host, conf.Port, conf.Name, conf.User, conf.Password,
				conf.DebugMode != nil && *conf.DebugMode, true)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("database schema is up to date")
			return nil
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print purchase request counts by status and department",
		RunE: func(cmd *cobra.Command, args []string) error {
			initializers.InitCommandServices()
			defer db.Close()
			stats, err := prhandler.Instance.Stats()
			if err != nil {
				return err
			}
			printStats(stats)
			return nil
		},
	}
}

func printStats(stats prapimodels.StatsView) {
	overview := table.NewWriter()
	overview.SetOutputMirror(os.Stdout)
	overview.AppendHeader(table.Row{"Total", "Draft", "Submitted", "Approved", "Rejected", "Total value", "Average value"})
	o := stats.Overview
	overview.AppendRow(table.Row{o.TotalPRs, o.DraftPRs, o.SubmittedPRs, o.ApprovedPRs, o.RejectedPRs,
		fmt.Sprintf("%.2f", o.TotalValue), fmt.Sprintf("%.2f", o.AvgValue)})
	overview.Render()

	departments := table.NewWriter()
	departments.SetOutputMirror(os.Stdout)
	departments.AppendHeader(table.Row{"Department", "Requests", "Total value"})
	for _, d := range stats.ByDepartment {
		departments.AppendRow(table.Row{d.Department, d.Count, fmt.Sprintf("%.2f", d.TotalValue)})
	}
	departments.Render()
}

func newRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send one round of overdue approval reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			initializers.InitCommandServices()
			defer db.Close()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sent, err := approvalchainhandler.Instance.RemindOverdue(ctx)
			if err != nil {
				return err
			}
			log.WithField("sent", sent).Info("approval reminders sent")
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	var userID, email, name string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			if config.Conf.Auth.JWTSecret == "" {
				return errors.New("JWT secret is not configured")
			}
			if email == "" && userID == "" {
				return errors.New("either --email or --user is required")
			}
			token, err := authutils.GetToken(config.Conf.Auth.JWTSecret, userID, email, name, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject claim")
	cmd.Flags().StringVar(&email, "email", "", "caller e-mail, used as the actor")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
