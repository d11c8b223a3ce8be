package chat

import (
	"fmt"
	"time"
)

// Greeting builds the dashboard welcome line from the time of day and
// the signed-in user's display name. The name is opaque to the core.
func Greeting(now time.Time, name string) string {
	var part string
	switch hour := now.Hour(); {
	case hour < 12:
		part = "Good morning"
	case hour < 18:
		part = "Good afternoon"
	default:
		part = "Good evening"
	}
	if name == "" {
		return part + "!"
	}
	return fmt.Sprintf("%s, %s!", part, name)
}
