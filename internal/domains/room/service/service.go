package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"fmt"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	// CachePrefix covers every room cache entry. Booking writes clear it after commit.
	CachePrefix = "room:"

	cacheGetRoom    = CachePrefix + "get"
	cacheGetAllRoom = CachePrefix + "list"
)

type Room interface {
	GetAll(ctx context.Context) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id int64) (dto.RoomResponse, error)
	CheckAvailability(ctx context.Context, id int64) (dto.AvailabilityResponse, error)
	Audit(ctx context.Context) (dto.AuditResponse, error)
}

type serviceImpl struct {
	repo  repository.Room
	db    *postgres.Connection
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Room, db *postgres.Connection, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Room {
	return &serviceImpl{
		repo:  repo,
		db:    db,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// GetAll lists every room ordered by room id.
func (s *serviceImpl) GetAll(ctx context.Context) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	generation, cacheable := shared.CacheGeneration(ctx, s.cache, CachePrefix)
	cacheKey := shared.BuildCacheKey(cacheGetAllRoom, generation)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	models, err := s.repo.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldRoomID, SortDir: gDto.SortDirAsc}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models)

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	generation, cacheable := shared.CacheGeneration(ctx, s.cache, CachePrefix)
	cacheKey := shared.BuildCacheKey(cacheGetRoom, generation, id)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldRoomID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.RoomID == 0 {
		return res, failure.NotFound("Room not found") // nolint:wrapcheck
	}

	res.FromModel(room)

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// CheckAvailability is the uncached availability gate. Unknown rooms yield AvailabilityNotFound, not an error.
func (s *serviceImpl) CheckAvailability(ctx context.Context, id int64) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.CheckAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	availability, err := s.repo.Availability(ctx, s.db.Read, id, false)
	if err != nil {
		log.Error().Err(err).Int64("room_id", id).Msg("failed to check room availability")

		return res, fmt.Errorf("failed to check room availability: %w", err)
	}

	res.FromModel(id, availability)

	return res, nil
}

// Audit reports rooms breaking the occupancy invariant. It is never cached.
func (s *serviceImpl) Audit(ctx context.Context) (res dto.AuditResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Audit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	entries, err := s.repo.Audit(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to audit rooms")

		return res, fmt.Errorf("failed to audit rooms: %w", err)
	}

	if len(entries) > 0 {
		log.Warn().Int("violations", len(entries)).Msg("room occupancy invariant violated")
	}

	res.FromModels(entries)

	return res, nil
}

// save writes through before returning. Failures are logged only.
func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	if err := s.cache.Save(context.WithoutCancel(ctx), key, value, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save room cache")
	}
}
