package shared

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"hotel/shared/cache"
	"hotel/shared/constant"
	"hotel/shared/dto"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeySeparator     = ":"
	cacheGenerationPrefix = "generation:"
)

func ConvertStringToInt(value string) *int64 {
	if value == constant.Empty {
		return nil
	}

	intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		log.Error().Err(err).Str("value", value).Msg("failed to convert string to int")

		return nil
	}

	return &intValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

func FilterByID(id any, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins prefix and parts with ':'.
func BuildCacheKey(prefix string, parts ...any) string {
	var sb strings.Builder

	sb.WriteString(prefix)

	for _, part := range parts {
		sb.WriteString(cacheKeySeparator)
		sb.WriteString(fmt.Sprint(part))
	}

	return sb.String()
}

// BuildCacheKeyWithQuery derives a stable key from pagination and filter args.
// Filter args are written in key order so equal filters share a key.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	_, args := filter.GetWhereClause()

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	slices.Sort(names)

	parts := []any{params.Page, params.Limit, params.SortBy, params.SortDir}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, args[name]))
	}

	return BuildCacheKey(prefix, parts...)
}

// CacheGeneration returns the tag of the current generation of prefix, such as "v3".
// Keys built under a tag go stale as soon as InvalidateCaches moves prefix on, so a
// snapshot read before a commit and saved after it is never served. ok is false when
// the generation cannot be read and the cache has to be bypassed.
func CacheGeneration(ctx context.Context, c cache.RedisCache, prefix string) (tag string, ok bool) {
	var generation int64

	err := c.Get(ctx, cacheGenerationPrefix+prefix, &generation)
	if err != nil && !errors.Is(err, cache.Nil) {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to read cache generation, bypassing cache")

		return constant.Empty, false
	}

	return "v" + strconv.FormatInt(generation, 10), true
}

// InvalidateCaches moves prefix to a new generation and drops the keys of the old one.
// Failures are logged only.
func InvalidateCaches(ctx context.Context, c cache.RedisCache, prefix string) {
	if _, err := c.Incr(ctx, cacheGenerationPrefix+prefix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to advance cache generation")
	}

	if err := c.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
