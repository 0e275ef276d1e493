package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"Vitabot/internal/utility"
)

// DefaultCompletedLimit is how many completed tasks the list shows before summarising the rest.
const DefaultCompletedLimit = 5

// EmptyMessage is sent instead of the list when every bucket is empty.
const EmptyMessage = "✨ No hay tareas pendientes."

// Formatter renders an aggregation result as a Telegram Markdown message.
type Formatter struct {
	Offset         time.Duration
	CompletedLimit int
}

func NewFormatter(offset time.Duration, completedLimit int) Formatter {
	if completedLimit <= 0 {
		completedLimit = DefaultCompletedLimit
	}
	return Formatter{Offset: offset, CompletedLimit: completedLimit}
}

// Format renders r relative to the day it was aggregated for. today is only
// consulted when r carries no day of its own.
func (f Formatter) Format(r Result, today time.Time) string {
	if r.Empty() {
		return EmptyMessage
	}
	loc := FixedZone(f.Offset)
	day, err := time.ParseInLocation(DateLayout, r.Today, loc)
	if err != nil {
		local := today.In(loc)
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}

	var b strings.Builder
	b.WriteString("📝 *LISTA DE TAREAS*\n\n")

	if len(r.Overdue) > 0 {
		b.WriteString("⚠️ *Tareas Vencidas:*\n")
		for _, t := range r.Overdue {
			due, _ := ParseDueDate(t.DueDate, loc)
			fmt.Fprintf(&b, "❗️ %s %s _(vencida: %s)_\n", ActionTag(t.ID), utility.EscapeMarkdown(t.Description), utility.FormatDate(due))
		}
		b.WriteString("\n")
	}

	if len(r.DueToday) > 0 {
		fmt.Fprintf(&b, "🎯 *HOY - %s*\n", utility.FormatLongDate(day))
		writeTaskLines(&b, r.DueToday)
		b.WriteString("\n")
	}

	if len(r.Upcoming) > 0 {
		b.WriteString("📅 *Próximas Tareas:*\n")
		for _, g := range r.Upcoming {
			due, _ := ParseDueDate(g.Date, loc)
			fmt.Fprintf(&b, "\n📌 *%s* _(%s)_\n", utility.FormatLongDate(due), relativeDays(day, due))
			writeTaskLines(&b, g.Tasks)
		}
		b.WriteString("\n")
	}

	if len(r.NoDate) > 0 {
		b.WriteString("📌 *Tareas Sin Fecha:*\n")
		writeTaskLines(&b, r.NoDate)
		b.WriteString("\n")
	}

	if len(r.Completed) > 0 {
		b.WriteString("✅ *Tareas Completadas:*\n")
		recent := mostRecent(r.Completed)
		limit := f.CompletedLimit
		if limit <= 0 {
			limit = DefaultCompletedLimit
		}
		shown := recent
		if len(shown) > limit {
			shown = shown[:limit]
		}
		for _, t := range shown {
			fmt.Fprintf(&b, "✓ %s %s _(%s)_\n", ActionTag(t.ID), utility.EscapeMarkdown(t.Description), utility.FormatShortDate(t.CreatedAt.In(loc)))
		}
		if rest := len(recent) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "_...y %d tareas más..._\n", rest)
		}
	}

	b.WriteString("\n💡 *Acciones:*\n")
	b.WriteString("• Usa `/addtodo` para agregar una tarea\n")
	b.WriteString("• Usa `/done_X` para completar una tarea\n")
	b.WriteString("• Usa `/delete_X` para eliminar una tarea")
	return b.String()
}

func writeTaskLines(b *strings.Builder, tasks []Task) {
	for _, t := range tasks {
		fmt.Fprintf(b, "• %s %s\n", ActionTag(t.ID), utility.EscapeMarkdown(t.Description))
	}
}

func relativeDays(today, due time.Time) string {
	days := int(due.Sub(today).Hours() / 24)
	if days == 1 {
		return "mañana"
	}
	return fmt.Sprintf("en %d días", days)
}

// mostRecent orders a copy of the completed tasks newest first, keeping store order on ties.
func mostRecent(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
