// Package instance identifies the running process for log correlation when
// several replicas share one log stream.
package instance

import "os"

// GetID returns the platform-assigned instance identifier, or "local".
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	return "local"
}
