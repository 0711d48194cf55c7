package di

import (
	"context"

	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/transport/http"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App is the assembled service together with the resources it has to release on exit.
type App struct {
	HTTP  *http.HTTP
	DB    *postgres.Connection
	Redis *goRedis.Client
	Kafka kafka.Client
	Otel  otel.Otel
}

func (a *App) Close(ctx context.Context) {
	a.DB.Close()

	if err := a.Redis.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis client")
	}

	if err := a.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := a.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}
