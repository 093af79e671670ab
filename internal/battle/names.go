package battle

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a canonical identifier such as "thunder_punch" into the
// form shown in messages ("Thunder Punch").
func DisplayName(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(trimmed, "_", " "))
}
