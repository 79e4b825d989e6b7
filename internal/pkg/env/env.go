package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RequireString returns the value of key and panics when it is unset or blank.
func RequireString(key string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		panic(fmt.Sprintf("environment variable %q is required", key))
	}

	return val
}

func String(key, def string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	return val
}

func Int(key string, def int) int {
	return parse(key, def, strconv.Atoi)
}

func Int64(key string, def int64) int64 {
	return parse(key, def, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func Bool(key string, def bool) bool {
	return parse(key, def, strconv.ParseBool)
}

func Duration(key string, def time.Duration) time.Duration {
	return parse(key, def, time.ParseDuration)
}

// parse falls back to def when key is unset or its value does not parse.
func parse[T any](key string, def T, conv func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	val, err := conv(strings.TrimSpace(raw))
	if err != nil {
		return def
	}

	return val
}
