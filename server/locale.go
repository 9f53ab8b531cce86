package server

import (
	"net/http"

	"golang.org/x/text/language"
)

// LocaleRewriter serves a localised variant for paths without a locale
// prefix. It returns the chosen locale and the rewritten path.
type LocaleRewriter interface {
	Rewrite(path string, header http.Header) (locale, rewritten string)
}

type acceptLanguageRewriter struct {
	locales  []string
	fallback string
	matcher  language.Matcher
}

// NewLocaleRewriter picks the best supported locale from Accept-Language,
// falling back to fallback when nothing matches.
func NewLocaleRewriter(locales []string, fallback string) LocaleRewriter {
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.Make(l))
	}
	return acceptLanguageRewriter{
		locales:  locales,
		fallback: fallback,
		matcher:  language.NewMatcher(tags),
	}
}

func (r acceptLanguageRewriter) Rewrite(path string, header http.Header) (string, string) {
	locale := r.negotiate(header.Get("Accept-Language"))
	if path == "" || path == "/" {
		return locale, "/" + locale
	}
	return locale, "/" + locale + path
}

func (r acceptLanguageRewriter) negotiate(acceptLanguage string) string {
	if acceptLanguage == "" || len(r.locales) == 0 {
		return r.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.fallback
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(r.locales) {
		return r.fallback
	}
	return r.locales[index]
}
