package instance

import (
	"os"
	"strings"
)

const fallbackID = "local"

// GetID names this replica in logs and lock ownership. It checks
// CARTRESERVE_INSTANCE_ID, then the platform's DYNO, then the hostname.
func GetID() string {
	for _, key := range []string{"CARTRESERVE_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
