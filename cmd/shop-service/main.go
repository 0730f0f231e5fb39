package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type cfg struct {
	Port             string
	PaymentProvider  string
	PaymentLatencyMS int
	KafkaBrokers     string
	Topic            string
}

func readCfg() cfg {
	latencyMS, _ := strconv.Atoi(getenv("PAYMENT_LATENCY_MS", "10"))
	return cfg{
		Port:             getenv("PORT", "8080"),
		PaymentProvider:  getenv("PAYMENT_PROVIDER", "stripe"),
		PaymentLatencyMS: latencyMS,
		KafkaBrokers:     getenv("KAFKA_BROKERS", ""),
		Topic:            getenv("KAFKA_TOPIC", "shoplab.events"),
	}
}

func main() {
	cfg := readCfg()
	app := newApp(cfg)
	defer app.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("shop-service listening on :%s (provider=%s, kafka=%v)", cfg.Port, cfg.PaymentProvider, app.events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
