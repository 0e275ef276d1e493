package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"Vitabot/internal/utility"
)

// Quantity is a number the model may send as 350, "350", "30 minutes",
// "300-400" or "unknown". Known is false when no number could be read.
type Quantity struct {
	Value int
	Known bool
}

func Known(v int) Quantity { return Quantity{Value: v, Known: true} }

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = ParseQuantity(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	*q = Known(int(f + 0.5))
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(q.Value)), nil
}

func (q Quantity) String() string {
	if !q.Known {
		return "unknown"
	}
	return strconv.Itoa(q.Value)
}

// ParseQuantity reads the first number in s. A range "a-b" yields its midpoint.
func ParseQuantity(s string) Quantity {
	nums := leadingNumbers(s)
	switch len(nums) {
	case 0:
		return Quantity{}
	case 1:
		return Known(nums[0])
	default:
		if strings.Contains(s, "-") {
			return Known((nums[0] + nums[1]) / 2)
		}
		return Known(nums[0])
	}
}

// leadingNumbers returns up to two numbers found in s. "1.800" is read as a
// thousands group, "1,5" as a decimal.
func leadingNumbers(s string) []int {
	rs := []rune(s)
	var out []int
	for i := 0; i < len(rs) && len(out) < 2; {
		if !unicode.IsDigit(rs[i]) {
			i++
			continue
		}
		j := i
		for j < len(rs) && (unicode.IsDigit(rs[j]) || ((rs[j] == '.' || rs[j] == ',') && j+1 < len(rs) && unicode.IsDigit(rs[j+1]))) {
			j++
		}
		if n, ok := parseNumber(string(rs[i:j])); ok {
			out = append(out, n)
		}
		i = j
	}
	return out
}

func parseNumber(tok string) (int, bool) {
	groups := strings.FieldsFunc(tok, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) > 1 {
		thousands := true
		for _, g := range groups[1:] {
			if len(g) != 3 {
				thousands = false
				break
			}
		}
		if thousands {
			tok = strings.Join(groups, "")
		} else {
			tok = groups[0] + "." + groups[1]
		}
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return int(f + 0.5), true
}

type Food struct {
	Name     string   `json:"name"`
	Calories Quantity `json:"calories"`
}

type ExerciseAnalysis struct {
	Name     string   `json:"name"`
	Calories Quantity `json:"calories"`
	Duration Quantity `json:"duration"`
}

// TodoAnalysis carries the raw due date text; the caller validates it.
type TodoAnalysis struct {
	Task    string `json:"task"`
	DueDate string `json:"due_date"`
}

type Evaluation struct {
	MealsAnalysis      string   `json:"analisisComidas"`
	ExercisesAnalysis  string   `json:"analisisEjercicios"`
	Recommendations    string   `json:"recomendaciones"`
	Score              Quantity `json:"calificacion"`
	NextDaySuggestions string   `json:"sugerenciasSiguienteDia"`
}

type DayMeals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
	Dinner    string `json:"dinner"`
}

type MealPlan struct {
	WeeklyCalories    Quantity       `json:"weeklyCalories"`
	DailyProteinGrams Quantity       `json:"dailyProteinGrams"`
	Recommendations   []string       `json:"recommendations"`
	Week              Week[DayMeals] `json:"mealPlan"`
}

type ExerciseDay struct {
	Focus           string   `json:"focus"`
	Activities      []string `json:"activities"`
	DurationMinutes Quantity `json:"durationMinutes"`
}

type ExercisePlan struct {
	WeeklyGoal      string            `json:"weeklyGoal"`
	Recommendations []string          `json:"recommendations"`
	Week            Week[ExerciseDay] `json:"exercisePlan"`
}

// Week holds one entry per weekday, Monday first.
type Week[T any] struct {
	Monday    T `json:"monday"`
	Tuesday   T `json:"tuesday"`
	Wednesday T `json:"wednesday"`
	Thursday  T `json:"thursday"`
	Friday    T `json:"friday"`
	Saturday  T `json:"saturday"`
	Sunday    T `json:"sunday"`
}

// Days returns the entries Monday to Sunday with their weekday.
func (w Week[T]) Days() []WeekDay[T] {
	return []WeekDay[T]{
		{time.Monday, w.Monday},
		{time.Tuesday, w.Tuesday},
		{time.Wednesday, w.Wednesday},
		{time.Thursday, w.Thursday},
		{time.Friday, w.Friday},
		{time.Saturday, w.Saturday},
		{time.Sunday, w.Sunday},
	}
}

type WeekDay[T any] struct {
	Weekday time.Weekday
	Value   T
}

// Context types of a voice note.
const (
	ContextMeal     = "meal"
	ContextExercise = "exercise"
	ContextTodo     = "todo"
	ContextUnknown  = "unknown"
)

type VoiceContext struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Calories Quantity `json:"calories"`
	Duration Quantity `json:"duration"`
	DueDate  string   `json:"due_date"`
}

type Transcription struct {
	Text    string       `json:"text"`
	Context VoiceContext `json:"context"`
}

// MealEntry and ExerciseEntry are the day's log as sent to the evaluator.
type MealEntry struct {
	Name     string
	Calories int
}

type ExerciseEntry struct {
	Name            string
	Calories        int
	DurationMinutes int
}

func (c *Client) AnalyzeFood(ctx context.Context, text string) (Food, error) {
	var out Food
	err := c.GenerateStructured(ctx, "AnalyzeFood", SystemPrompt,
		[]GeminiPart{TextPart(fmt.Sprintf(foodPrompt, text))}, FoodSchema, &out)
	return out, err
}

func (c *Client) AnalyzeExercise(ctx context.Context, text string) (ExerciseAnalysis, error) {
	var out ExerciseAnalysis
	err := c.GenerateStructured(ctx, "AnalyzeExercise", SystemPrompt,
		[]GeminiPart{TextPart(fmt.Sprintf(exercisePrompt, text))}, ExerciseSchema, &out)
	return out, err
}

// AnalyzeTodo extracts the task and an ISO due date relative to today (local, YYYY-MM-DD).
func (c *Client) AnalyzeTodo(ctx context.Context, text string, today time.Time) (TodoAnalysis, error) {
	day := today.Format("2006-01-02")
	tomorrow := today.AddDate(0, 0, 1).Format("2006-01-02")
	prompt := fmt.Sprintf(todoPrompt, day, utility.WeekdayES(today.Weekday()), day, tomorrow, text)

	var out TodoAnalysis
	err := c.GenerateStructured(ctx, "AnalyzeTodo", SystemPrompt, []GeminiPart{TextPart(prompt)}, TodoSchema, &out)
	out.Task = strings.TrimSpace(out.Task)
	out.DueDate = strings.TrimSpace(out.DueDate)
	return out, err
}

func (c *Client) EvaluateDay(ctx context.Context, meals []MealEntry, exercises []ExerciseEntry) (Evaluation, error) {
	var ml, el strings.Builder
	consumed, burned := 0, 0
	for _, m := range meals {
		fmt.Fprintf(&ml, "- %s (%d calorías)\n", m.Name, m.Calories)
		consumed += m.Calories
	}
	for _, e := range exercises {
		fmt.Fprintf(&el, "- %s (%d calorías quemadas, duración: %d minutos)\n", e.Name, e.Calories, e.DurationMinutes)
		burned += e.Calories
	}
	if ml.Len() == 0 {
		ml.WriteString("- (ninguna)\n")
	}
	if el.Len() == 0 {
		el.WriteString("- (ninguno)\n")
	}
	prompt := fmt.Sprintf(evaluationPrompt, ml.String(), el.String(), consumed, burned, consumed-burned)

	var out Evaluation
	err := c.GenerateStructured(ctx, "EvaluateDay", SystemPrompt, []GeminiPart{TextPart(prompt)}, EvaluationSchema, &out)
	return out, err
}

func (c *Client) GenerateMealPlan(ctx context.Context) (MealPlan, error) {
	var out MealPlan
	err := c.GenerateStructured(ctx, "MealPlan", SystemPrompt,
		[]GeminiPart{TextPart(fmt.Sprintf(mealPlanPrompt, c.cfg.PlanProfile))}, MealPlanSchema, &out)
	return out, err
}

func (c *Client) GenerateExercisePlan(ctx context.Context) (ExercisePlan, error) {
	var out ExercisePlan
	err := c.GenerateStructured(ctx, "ExercisePlan", SystemPrompt,
		[]GeminiPart{TextPart(fmt.Sprintf(exercisePlanPrompt, c.cfg.PlanProfile))}, ExercisePlanSchema, &out)
	return out, err
}

// TranscribeVoice uploads the audio, waits for it to be processed and asks the
// model for the text and its context. The uploaded file is always deleted.
// Meals and exercises whose calories came back unknown are re-analysed from the text.
func (c *Client) TranscribeVoice(ctx context.Context, audio []byte, mimeType string) (Transcription, error) {
	f, err := c.UploadFile(ctx, audio, mimeType, "voice-"+uuid.NewString())
	if err != nil {
		return Transcription{}, fmt.Errorf("transcribe: %w", err)
	}
	defer c.deleteQuietly(f.Name)

	f, err = c.WaitForFile(ctx, f.Name)
	if err != nil {
		return Transcription{}, fmt.Errorf("transcribe: %w", err)
	}
	if f.MimeType == "" {
		f.MimeType = mimeType
	}

	var out Transcription
	parts := []GeminiPart{
		TextPart(transcriptionPrompt),
		{FileData: &FileData{MimeType: f.MimeType, FileURI: f.URI}},
	}
	if err := c.GenerateStructured(ctx, "TranscribeVoice", SystemPrompt, parts, TranscriptionSchema, &out); err != nil {
		return Transcription{}, err
	}
	out.Context.Type = strings.ToLower(strings.TrimSpace(out.Context.Type))

	switch out.Context.Type {
	case ContextMeal:
		if !out.Context.Calories.Known {
			food, err := c.AnalyzeFood(ctx, out.Text)
			if err != nil {
				return Transcription{}, err
			}
			out.Context.Name, out.Context.Calories = food.Name, food.Calories
		}
	case ContextExercise:
		if !out.Context.Calories.Known {
			ex, err := c.AnalyzeExercise(ctx, out.Text)
			if err != nil {
				return Transcription{}, err
			}
			out.Context.Name, out.Context.Calories, out.Context.Duration = ex.Name, ex.Calories, ex.Duration
		}
	case ContextTodo:
	default:
		out.Context.Type = ContextUnknown
	}
	return out, nil
}
