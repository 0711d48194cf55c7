package timezone_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"hotel/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	t.Cleanup(func() { _ = timezone.Set("UTC") })

	require.NoError(t, timezone.Set("Asia/Jakarta"))
	assert.Equal(t, "Asia/Jakarta", timezone.Location().String())

	err := timezone.Set("Mars/Olympus_Mons")
	require.Error(t, err)
	assert.Equal(t, "Asia/Jakarta", timezone.Location().String())
}

func TestFormat(t *testing.T) {
	t.Cleanup(func() { _ = timezone.Set("UTC") })
	require.NoError(t, timezone.Set("Asia/Jakarta"))

	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01T19:00:00+07:00", timezone.Format(noon, time.RFC3339))
	assert.True(t, timezone.In(noon).Equal(noon))
	assert.Equal(t, timezone.Location(), timezone.Now().Location())
}
