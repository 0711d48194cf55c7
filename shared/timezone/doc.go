// Package timezone keeps the location every timestamp is rendered in.
//
// The zone comes from APP_TIMEZONE on first use and defaults to UTC. Set overrides it, e.g. in tests:
//
//	_ = timezone.Set("Asia/Jakarta")
//	created := timezone.Format(booking.CreatedAt, time.RFC3339)
package timezone
