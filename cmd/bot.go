package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/httpapi"
	"github.com/abhisek/proctor/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  "Run the Telegram bot. The operator HTTP endpoints are served alongside unless http.addr is empty.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.cfg.ValidateBot(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		api, err := tgbotapi.NewBotAPI(e.cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("connect to telegram: %w", err)
		}
		api.Debug = e.cfg.Telegram.Debug
		e.logger.Info("authorized", zap.String("bot", api.Self.UserName))

		bot := telegram.New(api, e.svc, telegram.Options{
			RatePerSecond: e.cfg.Telegram.RatePerSecond,
			Burst:         e.cfg.Telegram.Burst,
			Logger:        e.logger.Named("telegram"),
		})

		httpErr := make(chan error, 1)
		if e.cfg.HTTP.Addr != "" {
			handler := httpapi.NewRouter(e.svc, httpapi.Options{
				CORSOrigins: e.cfg.HTTP.CORSOrigins,
				Logger:      e.logger.Named("http"),
			})
			go func() { httpErr <- httpapi.Serve(ctx, e.cfg.HTTP.Addr, handler, e.logger) }()
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)
		defer api.StopReceivingUpdates()

		botErr := make(chan error, 1)
		go func() { botErr <- bot.Run(ctx, updates) }()

		select {
		case err = <-botErr:
		case err = <-httpErr:
			stop()
			<-botErr
		}
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		e.logger.Info("bot stopped")
		return err
	},
}
