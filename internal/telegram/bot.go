package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"Vitabot/internal/geminiservice"
	"Vitabot/internal/health"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

// API is the part of the Bot API the dispatcher talks to.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) error
	GetFile(ctx context.Context, fileID string) (File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// Assistant covers the model calls the bot makes directly.
type Assistant interface {
	AnalyzeTodo(ctx context.Context, text string, today time.Time) (geminiservice.TodoAnalysis, error)
	TranscribeVoice(ctx context.Context, audio []byte, mimeType string) (geminiservice.Transcription, error)
}

type Options struct {
	PollTimeout  time.Duration
	AllowedChats []int64
	Offset       time.Duration

	// Per chat token bucket.
	RateLimit rate.Limit
	RateBurst int

	// Number of update ids remembered for de-duplication.
	SeenUpdates int
}

func (o Options) withDefaults() Options {
	if o.PollTimeout <= 0 {
		o.PollTimeout = 30 * time.Second
	}
	if o.RateLimit == 0 {
		o.RateLimit = rate.Every(time.Second)
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 5
	}
	if o.SeenUpdates <= 0 {
		o.SeenUpdates = 1024
	}
	return o
}

type Bot struct {
	api     API
	todos   *todo.Service
	health  *health.Service
	ai      Assistant
	logger  zerolog.Logger
	opts    Options
	loc     *time.Location
	now     func() time.Time
	allowed map[int64]struct{}
	seen    *lru.Cache[int64, struct{}]
	limiter *utility.KeyedLimiter
	backoff time.Duration
}

func NewBot(api API, todos *todo.Service, hs *health.Service, ai Assistant, opts Options, logger zerolog.Logger) (*Bot, error) {
	opts = opts.withDefaults()
	seen, err := lru.New[int64, struct{}](opts.SeenUpdates)
	if err != nil {
		return nil, fmt.Errorf("update cache: %w", err)
	}
	limiter, err := utility.NewKeyedLimiter(opts.RateLimit, opts.RateBurst, 4096)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:     api,
		todos:   todos,
		health:  hs,
		ai:      ai,
		logger:  logger.With().Str("component", "telegram").Logger(),
		opts:    opts,
		loc:     todo.FixedZone(opts.Offset),
		now:     time.Now,
		seen:    seen,
		limiter: limiter,
		backoff: 2 * time.Second,
	}
	if len(opts.AllowedChats) > 0 {
		b.allowed = make(map[int64]struct{}, len(opts.AllowedChats))
		for _, id := range opts.AllowedChats {
			b.allowed[id] = struct{}{}
		}
	}
	return b, nil
}

// WithClock replaces the wall clock, for tests.
func (b *Bot) WithClock(now func() time.Time) *Bot {
	b.now = now
	return b
}

// Run long-polls getUpdates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Dur("poll_timeout", b.opts.PollTimeout).Msg("Telegram long polling started")
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := b.api.GetUpdates(ctx, offset, b.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.backoff):
			}
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate processes one update. It is safe to call for webhook deliveries
// that Telegram retries: an update id is handled at most once.
func (b *Bot) HandleUpdate(ctx context.Context, upd Update) {
	if found, _ := b.seen.ContainsOrAdd(upd.UpdateID, struct{}{}); found {
		b.logger.Debug().Int64("update_id", upd.UpdateID).Msg("Duplicate update ignored")
		return
	}
	msg := upd.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	logger := b.logger.With().Int64("update_id", upd.UpdateID).Int64("chat_id", chatID).Logger()

	if b.allowed != nil {
		if _, ok := b.allowed[chatID]; !ok {
			logger.Warn().Msg("Message from chat outside the allow-list dropped")
			return
		}
	}
	if !b.limiter.Allow(strconv.FormatInt(chatID, 10)) {
		logger.Warn().Msg("Chat rate limited")
		return
	}

	ctx = logger.WithContext(ctx)
	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, chatID, msg.Voice)
	case strings.TrimSpace(msg.Text) != "":
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if !strings.HasPrefix(text, "/") {
		if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.IsBot {
			if b.handlePromptReply(ctx, chatID, msg.ReplyToMessage.Text, text) {
				return
			}
		}
		b.send(ctx, chatID, greetingMessage, SendOptions{})
		return
	}

	command := parseCommand(text)
	switch {
	case command == "start" || command == "help":
		b.send(ctx, chatID, helpMessage, SendOptions{ParseMode: ParseModeMarkdown})
	case command == "addmeal":
		b.send(ctx, chatID, addMealPrompt, SendOptions{ForceReply: true})
	case command == "addexercise":
		b.send(ctx, chatID, addExercisePrompt, SendOptions{ForceReply: true})
	case command == "addtodo":
		b.send(ctx, chatID, addTodoPrompt, SendOptions{ForceReply: true})
	case command == "todos":
		b.listTodos(ctx, chatID)
	case strings.HasPrefix(command, strings.TrimPrefix(todo.DonePrefix, "/")):
		b.toggleTodo(ctx, chatID, firstField(text))
	case strings.HasPrefix(command, strings.TrimPrefix(todo.DeletePrefix, "/")):
		b.deleteTodo(ctx, chatID, firstField(text))
	case command == "evaluateday":
		b.evaluateDay(ctx, chatID)
	case command == "allmymeals":
		b.mealHistory(ctx, chatID)
	case command == "allexercises":
		b.exerciseHistory(ctx, chatID)
	case command == "mealplan":
		b.mealPlan(ctx, chatID)
	case command == "exerciseplan":
		b.exercisePlan(ctx, chatID)
	default:
		b.send(ctx, chatID, unknownCommandMessage, SendOptions{})
	}
}

// handlePromptReply routes an answer to one of the force_reply prompts.
func (b *Bot) handlePromptReply(ctx context.Context, chatID int64, prompt, text string) bool {
	switch {
	case strings.Contains(prompt, mealQuestion):
		m, err := b.health.LogMeal(ctx, text)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error adding meal")
			b.send(ctx, chatID, mealErrorMessage, SendOptions{})
			return true
		}
		b.send(ctx, chatID, health.FormatMealSaved(m), SendOptions{ParseMode: ParseModeMarkdown})
	case strings.Contains(prompt, exerciseQuestion):
		e, err := b.health.LogExercise(ctx, text)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error adding exercise")
			b.send(ctx, chatID, exerciseErrorMessage, SendOptions{})
			return true
		}
		b.send(ctx, chatID, health.FormatExerciseSaved(e), SendOptions{ParseMode: ParseModeMarkdown})
	case strings.Contains(prompt, todoQuestion):
		t, err := b.addTodo(ctx, text)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error adding todo")
			b.send(ctx, chatID, todoErrorMessage, SendOptions{})
			return true
		}
		b.send(ctx, chatID, b.formatTodoAdded(t), SendOptions{ParseMode: ParseModeMarkdown})
	default:
		return false
	}
	return true
}

// addTodo extracts task and deadline with the model. A deadline the model could
// not turn into YYYY-MM-DD is dropped rather than failing the whole task.
func (b *Bot) addTodo(ctx context.Context, text string) (todo.Task, error) {
	a, err := b.ai.AnalyzeTodo(ctx, text, b.now().In(b.loc))
	if err != nil {
		return todo.Task{}, fmt.Errorf("analyze todo: %w", err)
	}
	task := strings.TrimSpace(a.Task)
	if task == "" {
		task = strings.TrimSpace(text)
	}
	t, err := b.todos.Add(ctx, task, a.DueDate)
	if errors.Is(err, todo.ErrInvalidDueDate) {
		zerolog.Ctx(ctx).Warn().Str("due_date", a.DueDate).Msg("Model returned an unusable due date, saving without one")
		return b.todos.Add(ctx, task, "")
	}
	return t, err
}

func (b *Bot) formatTodoAdded(t todo.Task) string {
	msg := fmt.Sprintf("✅ Tarea agregada:\n*%s*", utility.EscapeMarkdown(t.Description))
	if due, ok := todo.ParseDueDate(t.DueDate, b.loc); ok {
		msg += "\nFecha límite: " + utility.FormatLongDate(due)
	}
	return msg
}

func (b *Bot) listTodos(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, loadingTodosMessage, SendOptions{})
	text, err := b.todos.Render(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error listing todos")
		b.send(ctx, chatID, listErrorMessage, SendOptions{})
		return
	}
	b.send(ctx, chatID, text, SendOptions{ParseMode: ParseModeMarkdown})
}

func (b *Bot) toggleTodo(ctx context.Context, chatID int64, cmd string) {
	id, err := todo.ParseTaskID(cmd, todo.DonePrefix)
	if err != nil {
		b.send(ctx, chatID, invalidTaskIDMessage, SendOptions{})
		return
	}
	t, err := b.todos.Toggle(ctx, id)
	switch {
	case errors.Is(err, todo.ErrNotFound):
		b.send(ctx, chatID, taskNotFoundMessage, SendOptions{})
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Int64("todo_id", id).Msg("Error toggling todo")
		b.send(ctx, chatID, toggleErrorMessage, SendOptions{})
	case t.Completed:
		b.send(ctx, chatID, taskDoneMessage, SendOptions{})
	default:
		b.send(ctx, chatID, taskReopenedMessage, SendOptions{})
	}
}

func (b *Bot) deleteTodo(ctx context.Context, chatID int64, cmd string) {
	id, err := todo.ParseTaskID(cmd, todo.DeletePrefix)
	if err != nil {
		b.send(ctx, chatID, invalidTaskIDMessage, SendOptions{})
		return
	}
	err = b.todos.Delete(ctx, id)
	switch {
	case errors.Is(err, todo.ErrNotFound):
		b.send(ctx, chatID, taskNotFoundMessage, SendOptions{})
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Int64("todo_id", id).Msg("Error deleting todo")
		b.send(ctx, chatID, deleteErrorMessage, SendOptions{})
	default:
		b.send(ctx, chatID, taskDeletedMessage, SendOptions{})
	}
}

func (b *Bot) evaluateDay(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, evaluatingMessage, SendOptions{})
	ev, err := b.health.EvaluateDay(ctx)
	switch {
	case errors.Is(err, health.ErrNothingToEvaluate):
		b.send(ctx, chatID, health.NothingTodayMessage, SendOptions{})
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error evaluating day")
		b.send(ctx, chatID, evaluateErrorMessage, SendOptions{})
	default:
		b.send(ctx, chatID, health.FormatEvaluation(ev), SendOptions{ParseMode: ParseModeMarkdown})
	}
}

func (b *Bot) mealHistory(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, loadingMealsMessage, SendOptions{})
	meals, err := b.health.MealHistory(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error loading meals")
		b.send(ctx, chatID, historyErrorMessage, SendOptions{})
		return
	}
	b.send(ctx, chatID, health.FormatMealHistory(meals), SendOptions{ParseMode: ParseModeMarkdown})
}

func (b *Bot) exerciseHistory(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, loadingExercisesMessage, SendOptions{})
	ex, err := b.health.ExerciseHistory(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error loading exercises")
		b.send(ctx, chatID, historyErrorMessage, SendOptions{})
		return
	}
	b.send(ctx, chatID, health.FormatExerciseHistory(ex), SendOptions{ParseMode: ParseModeMarkdown})
}

func (b *Bot) mealPlan(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, mealPlanMessage, SendOptions{})
	plan, err := b.health.MealPlan(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error generating meal plan")
		b.send(ctx, chatID, planErrorMessage, SendOptions{})
		return
	}
	b.send(ctx, chatID, health.FormatMealPlan(plan), SendOptions{})
}

func (b *Bot) exercisePlan(ctx context.Context, chatID int64) {
	b.send(ctx, chatID, exercisePlanMessage, SendOptions{})
	plan, err := b.health.ExercisePlan(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error generating exercise plan")
		b.send(ctx, chatID, planErrorMessage, SendOptions{})
		return
	}
	b.send(ctx, chatID, health.FormatExercisePlan(plan), SendOptions{})
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, opts SendOptions) {
	if err := b.api.SendMessage(ctx, chatID, text, opts); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("sendMessage failed")
	}
}

// parseCommand returns the lower-cased command name without "/" and "@botname".
func parseCommand(text string) string {
	cmd := strings.TrimPrefix(firstField(text), "/")
	if idx := strings.IndexByte(cmd, '@'); idx >= 0 {
		cmd = cmd[:idx]
	}
	return strings.ToLower(cmd)
}

func firstField(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
