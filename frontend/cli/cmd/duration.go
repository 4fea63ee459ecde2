package cmd

import (
	"fmt"
	"time"
)

const (
	minPollInterval = time.Second
	maxPollInterval = 5 * time.Minute
)

func validatePollInterval(d time.Duration) error {
	if d < minPollInterval {
		return fmt.Errorf("poll interval must be at least %s", minPollInterval)
	}
	if d > maxPollInterval {
		return fmt.Errorf("poll interval exceeds maximum of %s", maxPollInterval)
	}
	return nil
}
