package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/config"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
	"github.com/GG-Muniz/FlavorLab-sub000/routes"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

func main() {
	settings := config.Load()
	config.SetLogLevel(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(settings).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd(settings config.Settings) *cobra.Command {
	var addr string
	root := &cobra.Command{
		Use:          "ledgerd",
		Short:        "Nutrition ledger service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), settings, addr)
		},
	}
	root.Flags().StringVar(&addr, "addr", ":"+settings.Port, "listen address")

	root.AddCommand(&cobra.Command{
		Use:   "mint-token EMAIL",
		Short: "Create the user if needed and print a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitDB(settings)
			if err != nil {
				return err
			}
			return mintToken(cmd.OutOrStdout(), db, settings.JWTSecret, args[0])
		},
	})
	return root
}

func serve(ctx context.Context, settings config.Settings, addr string) error {
	logger := config.GetLogger()
	if settings.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(settings)
	if err != nil {
		return err
	}

	if err := config.ConnectRedis(ctx, settings.RedisAddr); err != nil {
		// writes still work, only the cross-instance lock is lost
		logger.Warn(err.Error())
	}
	defer config.CloseRedis()

	hub := services.NewRealtimeHub()

	var (
		push   *services.PushService
		pusher services.Pusher
	)
	if settings.SNSFCMArn != "" {
		push, err = services.NewPushService(ctx, db, settings.AWSRegion, settings.SNSFCMArn)
		if err != nil {
			logger.Warn("push disabled: " + err.Error())
			push = nil
		} else {
			pusher = push
		}
	}

	goals := services.NewGoalService(db)
	alerts := services.NewAlertBus(db, hub, pusher)
	ledgerSvc := services.NewLedgerService(db, goals, services.NewUserLocker(config.GetRedisLock()), hub, alerts)

	r := routes.SetupRouter(routes.Deps{
		DB:        db,
		JWTSecret: settings.JWTSecret,
		Logger:    logger,
		Ledger:    ledgerSvc,
		Notes:     services.NewNoteService(db),
		MealPlan:  services.NewMealPlanService(db, settings.HuggingFaceToken, hub),
		Hub:       hub,
		Push:      push,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", addr).Info("ledger service listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func mintToken(w io.Writer, db *gorm.DB, secret, email string) error {
	if secret == "" {
		return errors.New("JWT_SECRET not set")
	}
	user := models.User{Email: email}
	if err := db.Where(models.User{Email: email}).FirstOrCreate(&user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	tok, err := utils.GenerateJWT(secret, user.ID, user.Email)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, tok)
	return nil
}
