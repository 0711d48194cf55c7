package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/internal/domains/booking/model"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// events tails the booking topic and logs every lifecycle event.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.Configure(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)

	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	topic := cfg.Kafka.Topics.Booking

	log.Info().Str("topic", topic).Str("group", cfg.Kafka.ConsumerGroup).Msg("Consuming booking events.")

	client.Consume(ctx, cfg.Kafka.ConsumerGroup, topic, handleEvent)

	log.Info().Msg("Booking event consumer stopped.")
}

func handleEvent(message kafkaGo.Message) {
	event, err := kafka.DecodeKafkaMessage[model.Event](message)
	if err != nil {
		return
	}

	log.Info().
		Str("event_id", event.ID).
		Str("type", event.Type).
		Int64("booking_id", event.BookingID).
		Int64("room_id", event.RoomID).
		Str("customer_name", event.CustomerName).
		Time("occurred_at", event.OccurredAt).
		Int64("offset", message.Offset).
		Msg("Booking event received.")
}
