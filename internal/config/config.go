package config

type Config interface {
	EnvConfig
	CorsConfig
	GateConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBackendURL() string
	GetUpstreamURL() string
	GetLogLevel() string
	GetLogFile() string
}

type CorsConfig interface {
	GetAllowedOrigin() string
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Gate
	Session
	Storage
}

func New() Config {
	return mainConfig{}
}
