package timezone

import (
	"fmt"
	"sync"
	"time"

	"hotel/config"

	"github.com/rs/zerolog/log"
)

const defaultZone = "UTC"

var (
	mu       sync.RWMutex
	location *time.Location
	loadOnce sync.Once
)

// Set replaces the application location. An unknown zone name leaves the current one in place.
func Set(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", name, err)
	}

	mu.Lock()
	location = loc
	mu.Unlock()

	return nil
}

// Location returns the application location, loading APP_TIMEZONE on first use.
func Location() *time.Location {
	loadOnce.Do(load)

	mu.RLock()
	defer mu.RUnlock()

	return location
}

func load() {
	mu.RLock()
	configured := location != nil
	mu.RUnlock()

	if configured {
		return
	}

	name := config.Get().App.Timezone
	if name == "" {
		name = defaultZone
	}

	if err := Set(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("falling back to UTC")

		mu.Lock()
		location = time.UTC
		mu.Unlock()

		return
	}

	log.Info().Str("timezone", name).Msg("application timezone loaded")
}

// Now is the current time in the application location.
func Now() time.Time {
	return time.Now().In(Location())
}

// In converts t to the application location.
func In(t time.Time) time.Time {
	return t.In(Location())
}

func Format(t time.Time, layout string) string {
	return In(t).Format(layout)
}
