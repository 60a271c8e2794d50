// Package util provides helper functions shared across the service.
package util

import "os"

// GetEnvDefault returns the value of the environment variable key, or
// defVal when unset or empty.
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key)
	if !ex || val == "" {
		return defVal
	}
	return val
}

// IsEmpty checks if a string is empty.
func IsEmpty(s string) bool {
	return len(s) == 0
}

// IsNotEmpty is the negation of IsEmpty.
func IsNotEmpty(s string) bool {
	return len(s) > 0
}

// FileExists reports whether filename exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
