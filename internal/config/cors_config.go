package config

type Cors struct{}

var _ CorsConfig = Cors{}

// GetAllowedOrigin is attached verbatim to API responses. The API is public, so
// the default is the wildcard origin.
func (Cors) GetAllowedOrigin() string {
	return GetEnv("CORS_ALLOWED_ORIGIN", "*")
}

func (Cors) GetAllowedMethods() string {
	return GetEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
}

func (Cors) GetAllowedHeaders() string {
	return GetEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization")
}
