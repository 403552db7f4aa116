package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/config"
	"github.com/ariefcatur/go-storefront-orders.git/internal/httpx"
	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/notify"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/postgres"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)
	pRestocked := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockRestocked, 1024)
	pRestocked.Start(ctx)

	// Repos
	productRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	notifyRepo := &notify.Repo{DB: db}
	ledger := &inventory.PgLedger{DB: db}

	// Engine
	engine := &checkout.Service{
		Products:    productRepo,
		Carts:       cartRepo,
		Orders:      orderRepo,
		Ledger:      ledger,
		Producer:    pCreated,
		ServiceName: cfg.ServiceName,
	}
	lifecycle := &orders.Lifecycle{
		Orders:          orderRepo,
		Ledger:          ledger,
		ProducerCancel:  pCancelled,
		ProducerRestock: pRestocked,
		ServiceName:     cfg.ServiceName,
	}

	// Router + handlers
	router := httpx.NewRouter()
	(&httpx.CartHandler{Carts: cartRepo, Engine: engine}).Register(router)
	(&httpx.OrdersHandler{Store: orderRepo, Engine: engine, Lifecycle: lifecycle, Redis: rdb}).Register(router)
	(&httpx.ProductsHandler{Store: productRepo, Redis: rdb}).Register(router)
	(&httpx.NotifyHandler{Store: notifyRepo}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close()
	pCancelled.Close()
	pRestocked.Close()
	cancel() // stop producer loops
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
	pRestocked.WaitClosed()
}
