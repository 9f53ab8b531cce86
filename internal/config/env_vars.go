package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	backendURLVar  = "BACKEND_URL"
	upstreamURLVar = "UPSTREAM_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Job Portal")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBackendURL returns the base URL of the portal REST API (e.g., "https://api.jobs.example.com")
// Token, signup and current-user endpoints are resolved against it
func (EnvVars) GetBackendURL() string {
	return GetEnv(backendURLVar, "http://localhost:8081")
}

// GetUpstreamURL returns the front end the gateway forwards continued requests to.
// Empty means the gateway answers with its own placeholder page.
func (EnvVars) GetUpstreamURL() string {
	return GetEnv(upstreamURLVar, "")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

func (EnvVars) GetLogFile() string {
	return GetEnv("LOG_FILE", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvSlice splits a comma separated env var, trimming blanks.
func GetEnvSlice(envVar string, defaultValue []string) []string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
