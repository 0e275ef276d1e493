package health

import (
	"fmt"
	"strings"
	"time"

	"Vitabot/internal/geminiservice"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

const (
	NoMealsMessage      = "❌ No hay comidas registradas todavía."
	NoExercisesMessage  = "❌ No hay ejercicios registrados todavía."
	NothingTodayMessage = "❌ No hay registros de comidas ni ejercicios para el día de hoy."
)

var weekdayTitles = map[time.Weekday]string{
	time.Monday:    "LUNES",
	time.Tuesday:   "MARTES",
	time.Wednesday: "MIÉRCOLES",
	time.Thursday:  "JUEVES",
	time.Friday:    "VIERNES",
	time.Saturday:  "SÁBADO",
	time.Sunday:    "DOMINGO",
}

func FormatMealSaved(m Meal) string {
	return fmt.Sprintf("✅ Registré tu comida:\n*%s* - %d calorías", utility.EscapeMarkdown(m.Name), m.Calories)
}

func FormatExerciseSaved(e Exercise) string {
	return fmt.Sprintf("✅ Registré tu ejercicio:\n*%s* - %d calorías quemadas (%d minutos)",
		utility.EscapeMarkdown(e.Name), e.Calories, e.DurationMinutes)
}

// dateHeader renders a stored date as "📅 *miércoles, 5 de marzo de 2025*".
func dateHeader(date string) string {
	t, ok := todo.ParseDueDate(date, time.UTC)
	if !ok {
		return fmt.Sprintf("📅 *%s*\n", utility.EscapeMarkdown(date))
	}
	return fmt.Sprintf("📅 *%s*\n", utility.FormatLongDate(t))
}

// FormatMealHistory groups consecutive meals by date. meals must be ordered by date.
func FormatMealHistory(meals []Meal) string {
	if len(meals) == 0 {
		return NoMealsMessage
	}
	var b strings.Builder
	b.WriteString("🍽 *Tu Historial de Comidas*\n\n")
	current := ""
	for i, m := range meals {
		if i == 0 || m.Date != current {
			if i > 0 {
				b.WriteString("\n")
			}
			current = m.Date
			b.WriteString(dateHeader(m.Date))
		}
		fmt.Fprintf(&b, "  • %s — %d kcal 🔥\n", utility.EscapeMarkdown(m.Name), m.Calories)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatExerciseHistory(exercises []Exercise) string {
	if len(exercises) == 0 {
		return NoExercisesMessage
	}
	var b strings.Builder
	b.WriteString("🏃 *Tu Historial de Ejercicios*\n\n")
	current := ""
	for i, e := range exercises {
		if i == 0 || e.Date != current {
			if i > 0 {
				b.WriteString("\n")
			}
			current = e.Date
			b.WriteString(dateHeader(e.Date))
		}
		b.WriteString("  • " + utility.EscapeMarkdown(e.Name))
		if e.DurationMinutes > 0 {
			fmt.Fprintf(&b, " (%d min)", e.DurationMinutes)
		}
		fmt.Fprintf(&b, " — %d kcal 🔥\n", e.Calories)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatEvaluation(d DayEvaluation) string {
	ev := d.Evaluation
	var b strings.Builder
	b.WriteString("📊 *EVALUACIÓN DEL DÍA*\n\n")
	fmt.Fprintf(&b, "🔥 Consumidas: %d kcal · Quemadas: %d kcal · Balance: %d kcal\n\n",
		d.Totals.Consumed, d.Totals.Burned, d.Totals.Net)
	fmt.Fprintf(&b, "🍽 *Análisis de Comidas*\n%s\n\n", utility.EscapeMarkdown(ev.MealsAnalysis))
	fmt.Fprintf(&b, "💪 *Análisis de Ejercicios*\n%s\n\n", utility.EscapeMarkdown(ev.ExercisesAnalysis))
	fmt.Fprintf(&b, "📝 *Recomendaciones*\n%s\n\n", utility.EscapeMarkdown(ev.Recommendations))
	fmt.Fprintf(&b, "⭐ *Calificación del Día*: %s/10\n\n", ev.Score)
	fmt.Fprintf(&b, "🎯 *Sugerencias para Mañana*\n%s", utility.EscapeMarkdown(ev.NextDaySuggestions))
	return b.String()
}

// FormatMealPlan renders plain text; the plan is sent without parse mode.
func FormatMealPlan(p geminiservice.MealPlan) string {
	var b strings.Builder
	b.WriteString("🍽 PLAN DE ALIMENTACIÓN SEMANAL\n\n")
	fmt.Fprintf(&b, "📊 Calorías semanales: %s\n", p.WeeklyCalories)
	fmt.Fprintf(&b, "💪 Proteína diaria: %sg\n\n", p.DailyProteinGrams)

	if len(p.Recommendations) > 0 {
		b.WriteString("📝 RECOMENDACIONES:\n")
		for _, r := range p.Recommendations {
			fmt.Fprintf(&b, "• %s\n", r)
		}
		b.WriteString("\n")
	}

	for _, d := range p.Week.Days() {
		fmt.Fprintf(&b, "📅 %s\n", weekdayTitles[d.Weekday])
		fmt.Fprintf(&b, "🌅 Desayuno: %s\n", d.Value.Breakfast)
		fmt.Fprintf(&b, "🍳 Almuerzo: %s\n", d.Value.Lunch)
		fmt.Fprintf(&b, "🥪 Merienda: %s\n", d.Value.Snack)
		fmt.Fprintf(&b, "🌙 Cena: %s\n\n", d.Value.Dinner)
	}
	b.WriteString("⚠️ Importante: Este plan es una guía general. Consultá con un profesional de la salud antes de comenzar cualquier dieta.")
	return b.String()
}

func FormatExercisePlan(p geminiservice.ExercisePlan) string {
	var b strings.Builder
	b.WriteString("🏋️ PLAN DE EJERCICIOS SEMANAL\n\n")
	if p.WeeklyGoal != "" {
		fmt.Fprintf(&b, "🎯 Objetivo: %s\n\n", p.WeeklyGoal)
	}
	if len(p.Recommendations) > 0 {
		b.WriteString("📝 RECOMENDACIONES:\n")
		for _, r := range p.Recommendations {
			fmt.Fprintf(&b, "• %s\n", r)
		}
		b.WriteString("\n")
	}
	for _, d := range p.Week.Days() {
		fmt.Fprintf(&b, "📅 %s — %s", weekdayTitles[d.Weekday], d.Value.Focus)
		if d.Value.DurationMinutes.Known {
			fmt.Fprintf(&b, " (%d min)", d.Value.DurationMinutes.Value)
		}
		b.WriteString("\n")
		for _, a := range d.Value.Activities {
			fmt.Fprintf(&b, "  • %s\n", a)
		}
		b.WriteString("\n")
	}
	b.WriteString("⚠️ Importante: Consultá con un profesional antes de empezar una rutina nueva.")
	return b.String()
}
