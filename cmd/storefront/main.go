package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartcommerce/storefront/internal/api"
	"github.com/smartcommerce/storefront/internal/cart"
	"github.com/smartcommerce/storefront/internal/catalog"
	"github.com/smartcommerce/storefront/internal/config"
	"github.com/smartcommerce/storefront/internal/order"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to .env file")
	userID := flag.String("user", "", "customer id for authenticated commands")
	token := flag.String("token", "", "bearer token for authenticated commands")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}
	if *userID != "" && *token != "" {
		client.SetCredentials(api.Credentials{UserID: *userID, Token: *token})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "products":
		runProducts(ctx, client)
	case "cart-count":
		runCartCount(ctx, client)
	case "watch":
		if len(args) < 2 {
			log.Fatal().Msg("watch needs an order id")
		}
		runWatch(ctx, client, cfg, args[1])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storefront [flags] <products|cart-count|watch ORDER_ID>")
}

func runProducts(ctx context.Context, client *api.Client) {
	svc := catalog.NewService(client)
	products, err := svc.Products(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list products")
	}
	for _, p := range products {
		fmt.Printf("%d\t%s\t%d paise\n", p.ID, p.Name, p.Price)
	}
}

func runCartCount(ctx context.Context, client *api.Client) {
	store := cart.NewStore(client)
	store.FetchCount(ctx)
	fmt.Println(store.Count())
}

func runWatch(ctx context.Context, client *api.Client, cfg *config.Config, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.Fatal().Str("order_id", rawID).Msg("Order id must be numeric")
	}

	svc := order.NewService(client)
	o, err := svc.Get(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch order")
	}
	fmt.Printf("order %d: %s\n", o.ID, o.Status)

	if o.Status.Terminal() {
		return
	}

	poller := order.NewPoller(svc, cfg.Orders.PollInterval)
	done := make(chan struct{})
	stopPolling := poller.Watch(ctx, o.ID, o.Status, func(status order.Status) {
		fmt.Printf("order %d: %s\n", o.ID, status)
		if status.Terminal() {
			close(done)
		}
	})
	defer stopPolling()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case <-done:
	}
}
