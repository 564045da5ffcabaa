package helpers

import (
	"strings"
	"time"

	"github.com/skillpivot/api/internal/pkg/logger"
)

// ParseDuration parses a duration setting such as "1h" or "720h". An empty or
// malformed value yields the fallback.
func ParseDuration(durationStr string, fallback time.Duration) time.Duration {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return fallback
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("fallback", fallback).Msg("Failed to parse duration string, using fallback")
		return fallback
	}
	return duration
}
