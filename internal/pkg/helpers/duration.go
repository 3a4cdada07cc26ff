package helpers

import (
	"time"

	"github.com/yigit/admission/internal/pkg/logger"
)

// DurationOr parses value, falling back when it is empty or malformed
func DurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using fallback")
		return fallback
	}
	return d
}
