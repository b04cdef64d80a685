package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

func envOrDefault(key, defaultValue string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func intEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}

// listEnvOrDefault splits a comma separated value, dropping blanks.
func listEnvOrDefault(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	out := splitTrim(raw, ",")
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// mapListEnv parses "KEY=a|b;OTHER=c" into KEY -> [a b], OTHER -> [c].
// Keys are upper-cased; malformed pairs are skipped.
func mapListEnv(key string) map[string][]string {
	out := make(map[string][]string)
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return out
	}
	for _, pair := range splitTrim(raw, ";") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.ToUpper(strings.TrimSpace(k))
		if !ok || k == "" {
			continue
		}
		out[k] = append(out[k], splitTrim(v, "|")...)
	}
	return out
}

// intListEnv parses a comma separated list of integers. Any bad entry discards the whole list.
func intListEnv(key string) []int {
	parts := listEnvOrDefault(key, nil)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
