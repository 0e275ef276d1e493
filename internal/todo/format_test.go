package todo

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []Task {
	tasks := []Task{
		task(1, "pagar luz", "2025-03-01"),
		task(2, "llamar a mamá", "2025-03-05"),
		task(3, "turno médico", "2025-03-06"),
		task(4, "entregar informe", "2025-03-10"),
		task(5, "leer_libro *urgente*", ""),
	}
	for id := int64(10); id < 17; id++ {
		done := task(id, "hecha", "2025-02-01")
		done.Completed = true
		tasks = append(tasks, done)
	}
	return tasks
}

func render(t *testing.T, tasks []Task) string {
	t.Helper()
	res := NewAggregator(DefaultOffset).Aggregate(tasks, refNow)
	return NewFormatter(DefaultOffset, 5).Format(res, refNow)
}

func TestFormatSectionOrder(t *testing.T) {
	out := render(t, sampleTasks())

	headers := []string{
		"📝 *LISTA DE TAREAS*",
		"⚠️ *Tareas Vencidas:*",
		"🎯 *HOY - miércoles, 5 de marzo de 2025*",
		"📅 *Próximas Tareas:*",
		"📌 *jueves, 6 de marzo de 2025* _(mañana)_",
		"📌 *lunes, 10 de marzo de 2025* _(en 5 días)_",
		"📌 *Tareas Sin Fecha:*",
		"✅ *Tareas Completadas:*",
		"💡 *Acciones:*",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "missing %q in\n%s", h, out)
		assert.Greater(t, idx, last, "%q out of order", h)
		last = idx
	}
	assert.Contains(t, out, "❗️ `/done_1` pagar luz _(vencida: 1 de marzo de 2025)_")
}

func TestFormatOmitsEmptySections(t *testing.T) {
	out := render(t, []Task{task(1, "solo", "")})

	assert.Contains(t, out, "📌 *Tareas Sin Fecha:*")
	assert.NotContains(t, out, "Vencidas")
	assert.NotContains(t, out, "🎯 *HOY")
	assert.NotContains(t, out, "Próximas")
	assert.NotContains(t, out, "Completadas")
}

func TestFormatCompletedLimit(t *testing.T) {
	out := render(t, sampleTasks())

	assert.Contains(t, out, "_...y 2 tareas más..._")
	// Newest first: ids 16..12 are shown, 11 and 10 are summarised.
	assert.Contains(t, out, "✓ `/done_16`")
	assert.Contains(t, out, "✓ `/done_12`")
	assert.NotContains(t, out, "`/done_11`")
	assert.Less(t, strings.Index(out, "`/done_16`"), strings.Index(out, "`/done_12`"))
}

func TestFormatEscapesMarkdown(t *testing.T) {
	out := render(t, sampleTasks())
	assert.Contains(t, out, `leer\_libro \*urgente\*`)
}

func TestFormatUsesAggregatedDay(t *testing.T) {
	res := NewAggregator(DefaultOffset).Aggregate(sampleTasks(), refNow)
	out := NewFormatter(DefaultOffset, 5).Format(res, refNow.Add(48*time.Hour))

	assert.Contains(t, out, "🎯 *HOY - miércoles, 5 de marzo de 2025*")
	assert.Contains(t, out, "📌 *jueves, 6 de marzo de 2025* _(mañana)_")
}

func TestFormatEmpty(t *testing.T) {
	out := NewFormatter(DefaultOffset, 5).Format(Result{}, refNow)
	assert.Equal(t, EmptyMessage, out)
}

var tagRe = regexp.MustCompile("`(/done_\\d+)`")

func TestFormatIDRoundTrip(t *testing.T) {
	tasks := sampleTasks()
	byID := map[int64]Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	out := render(t, tasks)

	matches := tagRe.FindAllStringSubmatch(out, -1)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		id, err := ParseTaskID(m[1], DonePrefix)
		require.NoError(t, err)
		tk, ok := byID[id]
		require.True(t, ok, "rendered id %d not in input", id)
		assert.Equal(t, id, tk.ID)

		delID, err := ParseTaskID(strings.Replace(m[1], DonePrefix, DeletePrefix, 1), DeletePrefix)
		require.NoError(t, err)
		assert.Equal(t, id, delID)
	}
	// every open task plus the five visible completed ones
	assert.Len(t, matches, 5+5)
}

func TestRelativeDays(t *testing.T) {
	loc := FixedZone(DefaultOffset)
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, loc)
	assert.Equal(t, "mañana", relativeDays(day, day.AddDate(0, 0, 1)))
	assert.Equal(t, "en 3 días", relativeDays(day, day.AddDate(0, 0, 3)))
}
