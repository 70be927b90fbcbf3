package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/chepyr/go-board-notes/internal/apperr"
)

const (
	maxNameLength = 100
	maxNoteLength = 5000
	defaultColor  = "#ffffff"
)

var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func normalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", apperr.Validation("%s is required and must be <= %d characters", field, maxNameLength)
	}
	return name, nil
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxNoteLength {
		return "", apperr.Validation("Note text is required and must be <= %d characters", maxNoteLength)
	}
	return text, nil
}

// normalizeColor defaults an empty color to white.
func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return defaultColor, nil
	}
	if !colorRegex.MatchString(color) {
		return "", apperr.Validation("Color must look like #rgb or #rrggbb")
	}
	return strings.ToLower(color), nil
}
