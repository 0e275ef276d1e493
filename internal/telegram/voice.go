package telegram

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"Vitabot/internal/geminiservice"
	"Vitabot/internal/health"
)

const defaultVoiceMime = "audio/ogg"

func (b *Bot) handleVoice(ctx context.Context, chatID int64, v *Voice) {
	b.send(ctx, chatID, processingVoiceMessage, SendOptions{})

	tr, err := b.transcribe(ctx, v)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("file_id", v.FileID).Msg("Voice message processing error")
		b.send(ctx, chatID, genericErrorMessage, SendOptions{})
		return
	}
	vc := tr.Context
	zerolog.Ctx(ctx).Info().Str("type", vc.Type).Str("name", vc.Name).Msg("Voice note transcribed")

	switch vc.Type {
	case geminiservice.ContextTodo:
		t, err := b.addTodo(ctx, tr.Text)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error adding todo from voice")
			b.send(ctx, chatID, todoErrorMessage, SendOptions{})
			return
		}
		b.send(ctx, chatID, b.formatTodoAdded(t), SendOptions{ParseMode: ParseModeMarkdown})
	case geminiservice.ContextExercise:
		e, err := b.health.SaveExercise(ctx, vc.Name, vc.Duration.Value, vc.Calories.Value)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error saving exercise from voice")
			b.send(ctx, chatID, exerciseErrorMessage, SendOptions{})
			return
		}
		b.send(ctx, chatID, health.FormatExerciseSaved(e), SendOptions{ParseMode: ParseModeMarkdown})
	case geminiservice.ContextMeal:
		m, err := b.health.SaveMeal(ctx, vc.Name, vc.Calories.Value)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Error saving meal from voice")
			b.send(ctx, chatID, mealErrorMessage, SendOptions{})
			return
		}
		b.send(ctx, chatID, health.FormatMealSaved(m), SendOptions{ParseMode: ParseModeMarkdown})
	default:
		b.send(ctx, chatID, notUnderstoodMessage, SendOptions{})
	}
}

func (b *Bot) transcribe(ctx context.Context, v *Voice) (geminiservice.Transcription, error) {
	f, err := b.api.GetFile(ctx, v.FileID)
	if err != nil {
		return geminiservice.Transcription{}, fmt.Errorf("get file: %w", err)
	}
	audio, err := b.api.DownloadFile(ctx, f.FilePath)
	if err != nil {
		return geminiservice.Transcription{}, err
	}
	mime := v.MimeType
	if mime == "" {
		mime = defaultVoiceMime
	}
	return b.ai.TranscribeVoice(ctx, audio, mime)
}
