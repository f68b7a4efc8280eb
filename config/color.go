package config

import "os"

// noColor honors https://no-color.org convention.
func noColor() bool {
	v, ok := os.LookupEnv("NO_COLOR")
	return ok && v != ""
}
