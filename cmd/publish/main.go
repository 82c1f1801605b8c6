package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/matvault/matvault/internal/app"
	"github.com/matvault/matvault/internal/catalog/kafka"
	"github.com/matvault/matvault/internal/catalog/outbox"
	"github.com/matvault/matvault/internal/storage/sqlstore"
)

// publish drains catalog events from the outbox into Kafka.
func main() {
	os.Exit(app.Run("publish", run))
}

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "matvault.db"
	}
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "catalog-events"
	}

	db, err := sqlstore.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   topic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer producer.Close()

	publisher, err := outbox.NewPublisher(outbox.PublisherConfig{
		OutboxRepo: sqlstore.New(db).Outbox(),
		Producer:   producer,
		Interval:   2 * time.Second,
		BatchSize:  100,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}

	return publisher.Start(ctx)
}
