package utility

import (
	"fmt"
	"strings"
	"time"
)

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// markdownEscaper escapes the entities of Telegram's legacy Markdown parse mode.
var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// EscapeMarkdown makes user supplied text safe to embed in a Markdown message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// WeekdayES returns the Spanish weekday name, lower case.
func WeekdayES(d time.Weekday) string {
	return weekdaysES[d]
}

// MonthES returns the Spanish month name, lower case.
func MonthES(m time.Month) string {
	return monthsES[m-1]
}

// FormatLongDate renders "miércoles, 5 de marzo de 2025" (es-AR, weekday long).
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %s", WeekdayES(t.Weekday()), FormatDate(t))
}

// FormatDate renders "5 de marzo de 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthES(t.Month()), t.Year())
}

// FormatShortDate renders "5 mar 2025".
func FormatShortDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), MonthES(t.Month())[:3], t.Year())
}
