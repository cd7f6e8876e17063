package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HSouheill/shop_backoffice/config"
	"github.com/HSouheill/shop_backoffice/middleware"
	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/routes"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/websocket"
)

func main() {
	root := &cobra.Command{
		Use:   "shop-backoffice",
		Short: "Back-office API for categories, products, orders and payments",
	}
	root.AddCommand(serveCommand(), sweepCryptoCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Load()
			if port != "" {
				settings.Port = port
			}
			return serve(settings)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func sweepCryptoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-crypto",
		Short: "Expire pending crypto payments past their deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Load()
			store, closeStore, err := config.OpenStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			n := services.SweepCryptoPayments(services.NewMockCryptoProvider(store.CryptoPayments))
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d crypto payments\n", n)
			return nil
		},
	}
}

func serve(settings config.Settings) error {
	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := config.OpenStore(ctx, settings)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	disk, err := storage.New(settings)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	redisClient := config.ConnectRedis(settings)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	crypto := services.NewMockCryptoProvider(store.CryptoPayments)
	crypto.OnTransition = func(payment *models.CryptoPayment) {
		hub.Publish(websocket.EventCryptoUpdated, payment)
	}

	scheduler, err := services.NewScheduler(crypto)
	if err != nil {
		return fmt.Errorf("schedule crypto sweep: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(time.Minute, ctx.Done())

	e := routes.NewServer(routes.Dependencies{
		Settings: settings,
		Store:    store,
		Disk:     disk,
		Cache:    services.NewCategoryCache(redisClient),
		Gateway: services.NewStripeService(services.StripeConfig{
			SecretKey:  settings.StripeSecretKey,
			Currency:   settings.StripeCurrency,
			SuccessURL: settings.CheckoutSuccessURL,
			CancelURL:  settings.CheckoutCancelURL,
		}),
		Crypto: crypto,
		Mailer: services.NewMailer(services.SMTPConfig{
			Host:     settings.SMTPHost,
			Port:     settings.SMTPPort,
			Username: settings.SMTPUsername,
			Password: settings.SMTPPassword,
			From:     settings.SMTPFrom,
		}),
		Hub:         hub,
		Metrics:     middleware.NewMetrics(),
		RateLimiter: rateLimiter,
	})

	go func() {
		log.Printf("Server starting on :%s", settings.Port)
		if err := e.Start(":" + settings.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
