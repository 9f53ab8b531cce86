package server

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":     Green,
	"POST":    Blue,
	"PUT":     Cyan,
	"DELETE":  Yellow,
	"PATCH":   Magenta,
	"OPTIONS": Gray,
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logRouteError(method, path, message string) {
	log.Warn().Msgf("[%-19s] %s %s", colouredMethod(method), path, Red+message+ResetColor)
}
