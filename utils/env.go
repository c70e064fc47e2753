package utils

import "os"

// ReadEnvVar safely reads a variable from the environment.
// If the variable does not exist, an empty string is returned.
func ReadEnvVar(env string) string {
	if e, ok := os.LookupEnv(env); ok {
		return e
	}
	return ""
}

// ReadEnvVarWithDefault reads a variable from the environment, returning
// def when it is unset or empty.
func ReadEnvVarWithDefault(env string, def string) string {
	if e, ok := os.LookupEnv(env); ok && e != "" {
		return e
	}
	return def
}
