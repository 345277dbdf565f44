// Package config loads the optional splimer.yaml defaults file.
package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} with the variable's value and ${VAR:-default}
// with the value or, when unset or empty, the default. Unset variables
// without a default expand to the empty string.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
