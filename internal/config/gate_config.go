package config

type GateConfig interface {
	GetLocales() []string
	GetDefaultLocale() string
	GetProtectedPaths() []string
	GetAuthOnlyPaths() []string
	GetAPIPrefix() string
	GetSignInPath() string
	GetAccessTokenCookie() string
}

type Gate struct{}

var _ GateConfig = Gate{}

var (
	defaultLocales        = []string{"en", "vi"}
	defaultProtectedPaths = []string{"/dashboard", "/profile", "/cv", "/apply", "/api/protected"}
	defaultAuthOnlyPaths  = []string{"/auth/signin", "/auth/signup"}
)

func (Gate) GetLocales() []string {
	return GetEnvSlice("LOCALES", defaultLocales)
}

// GetDefaultLocale must be one of GetLocales
func (g Gate) GetDefaultLocale() string {
	locale := GetEnv("DEFAULT_LOCALE", "en")
	for _, l := range g.GetLocales() {
		if l == locale {
			return locale
		}
	}
	return g.GetLocales()[0]
}

func (Gate) GetProtectedPaths() []string {
	return GetEnvSlice("PROTECTED_PATHS", defaultProtectedPaths)
}

func (Gate) GetAuthOnlyPaths() []string {
	return GetEnvSlice("AUTH_ONLY_PATHS", defaultAuthOnlyPaths)
}

func (Gate) GetAPIPrefix() string {
	return GetEnv("API_PREFIX", "/api")
}

func (Gate) GetSignInPath() string {
	return GetEnv("SIGNIN_PATH", "/auth/signin")
}

func (Gate) GetAccessTokenCookie() string {
	return GetEnv("ACCESS_TOKEN_COOKIE", "accessToken")
}
