package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"parent-care-assistant/internal/extraction"
	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

// Extract resolves the transcript for input and runs the pipeline.
func (uc *implUseCase) Extract(ctx context.Context, sc model.Scope, input extraction.ExtractInput) (extraction.ExtractOutput, error) {
	var (
		out        extraction.ExtractOutput
		transcript = input.Transcript
		parentName = strings.TrimSpace(input.ParentName)
	)

	if input.ConversationID != "" {
		conv, parent, err := uc.loadConversation(ctx, sc, input.ConversationID)
		if err != nil {
			return extraction.ExtractOutput{}, err
		}
		out.ConversationID = conv.ID
		out.ParentID = conv.ParentID
		transcript = conv.Transcript
		if parent.Name != "" {
			parentName = parent.Name
		}
	} else if strings.TrimSpace(transcript) == "" && input.AudioURL != "" {
		text, err := uc.transcribe(ctx, input.AudioURL)
		if err != nil {
			return extraction.ExtractOutput{}, err
		}
		transcript = text
	}

	if strings.TrimSpace(transcript) == "" {
		return extraction.ExtractOutput{}, extraction.ErrEmptyTranscript
	}

	out.Result = uc.ExtractSchedulesFromConversation(ctx, transcript, parentName)

	if out.ConversationID != "" {
		err := uc.repo.UpdateAnalysis(ctx, repo.UpdateAnalysisOptions{
			ID:       out.ConversationID,
			Summary:  out.Result.Summary,
			Keywords: out.Result.Keywords,
			Mood:     string(out.Result.Mood),
		})
		if err != nil {
			uc.l.Errorf(ctx, "uc.Extract UpdateAnalysis: %v", err)
		}
	}

	return out, nil
}

// ExtractSchedulesFromConversation runs the model once and falls back to the rule
// table on any model failure. It never fails for a non-empty transcript.
func (uc *implUseCase) ExtractSchedulesFromConversation(ctx context.Context, transcript, parentName string) extraction.ExtractionResult {
	started := time.Now()
	today := uc.clock()
	if strings.TrimSpace(parentName) == "" {
		parentName = uc.defaultParent
	}

	if uc.model != nil {
		draft, err := uc.tryModel(ctx, transcript, parentName, today)
		if err == nil {
			result := uc.finalize(draft, extraction.SourceModel)
			uc.metrics.observe(extraction.SourceModel, time.Since(started))
			return result
		}
		uc.logFallback(ctx, err)
	} else {
		uc.metrics.fellBack(fallbackNoModel)
	}

	draft := uc.rules.Classify(transcript, parentName, today)
	result := uc.finalize(draft, extraction.SourceRules)
	uc.metrics.observe(extraction.SourceRules, time.Since(started))
	return result
}

// tryModel makes the single model attempt under the model timeout. A panic in
// the model client is returned as an error so the rules still answer.
func (uc *implUseCase) tryModel(ctx context.Context, transcript, parentName string, today time.Time) (draft extraction.Draft, err error) {
	mctx, cancel := context.WithTimeout(ctx, uc.modelTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			draft, err = extraction.Draft{}, fmt.Errorf("model panicked: %v", r)
		}
	}()
	return uc.model.Extract(mctx, transcript, parentName, today)
}

// finalize assigns ids and resets selection. Ids are unique per call and
// time-ordered across calls.
func (uc *implUseCase) finalize(draft extraction.Draft, source extraction.Source) extraction.ExtractionResult {
	batch, err := uuid.NewV7()
	if err != nil {
		batch = uuid.New()
	}

	result := extraction.ExtractionResult{
		Summary:   draft.Summary,
		Keywords:  make([]string, 0, len(draft.Keywords)),
		Mood:      draft.Mood,
		Schedules: make([]extraction.ExtractedSchedule, 0, len(draft.Schedules)),
		Source:    source,
	}
	if !result.Mood.IsValid() {
		result.Mood = extraction.MoodNeutral
	}
	for _, k := range draft.Keywords {
		if len(result.Keywords) == extraction.MaxKeywords {
			break
		}
		result.Keywords = append(result.Keywords, k)
	}
	for i, s := range draft.Schedules {
		result.Schedules = append(result.Schedules, extraction.ExtractedSchedule{
			ID:         fmt.Sprintf("schedule-%s-%d", batch, i),
			Type:       s.Type,
			Topic:      s.Topic,
			DueDate:    s.DueDate,
			Reason:     s.Reason,
			Confidence: s.Confidence,
			Selected:   false,
		})
	}
	return result
}

const (
	fallbackNoModel     = "no_model"
	fallbackUnavailable = "unavailable"
	fallbackTimeout     = "timeout"
	fallbackCanceled    = "canceled"
	fallbackUpstream    = "upstream"
	fallbackMalformed   = "malformed"
	fallbackOther       = "other"
)

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, extraction.ErrModelUnavailable):
		return fallbackUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fallbackTimeout
	case errors.Is(err, context.Canceled):
		return fallbackCanceled
	case errors.Is(err, extraction.ErrMalformedResponse):
		return fallbackMalformed
	case errors.Is(err, extraction.ErrUpstream):
		return fallbackUpstream
	}
	return fallbackOther
}

func (uc *implUseCase) logFallback(ctx context.Context, err error) {
	reason := fallbackReason(err)
	uc.metrics.fellBack(reason)

	switch reason {
	case fallbackUnavailable:
		uc.l.Debugf(ctx, "uc.ExtractSchedulesFromConversation: model unavailable, using rules")
	case fallbackMalformed:
		var malformed *extraction.MalformedError
		if errors.As(err, &malformed) {
			uc.l.Warn(ctx, "model response malformed, using rules", "error", err.Error(), "raw", malformed.Raw)
			return
		}
		uc.l.Warnf(ctx, "uc.ExtractSchedulesFromConversation: %v, using rules", err)
	default:
		uc.l.Warnf(ctx, "uc.ExtractSchedulesFromConversation: model failed (%s): %v, using rules", reason, err)
	}
}

func (uc *implUseCase) loadConversation(ctx context.Context, sc model.Scope, id string) (model.Conversation, model.Parent, error) {
	if uc.repo == nil {
		return model.Conversation{}, model.Parent{}, extraction.ErrStorageUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.Conversation{}, model.Parent{}, extraction.ErrConversationNotFound
	}

	conv, err := uc.repo.GetConversation(ctx, repo.GetConversationOptions{ID: id, UserID: sc.UserID})
	if err != nil {
		uc.l.Errorf(ctx, "uc.Extract GetConversation: %v", err)
		return model.Conversation{}, model.Parent{}, err
	}
	if conv.ID == "" {
		return model.Conversation{}, model.Parent{}, extraction.ErrConversationNotFound
	}

	parent, err := uc.repo.GetParent(ctx, repo.GetParentOptions{ID: conv.ParentID, UserID: sc.UserID})
	if err != nil {
		uc.l.Errorf(ctx, "uc.Extract GetParent: %v", err)
		return model.Conversation{}, model.Parent{}, err
	}
	return conv, parent, nil
}

func (uc *implUseCase) transcribe(ctx context.Context, audioURL string) (string, error) {
	if uc.transcriber == nil {
		return "", fmt.Errorf("%w: no transcriber configured", extraction.ErrTranscriptionFailed)
	}
	text, err := uc.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		uc.l.Errorf(ctx, "uc.Extract Transcribe: %v", err)
		return "", fmt.Errorf("%w: %w", extraction.ErrTranscriptionFailed, err)
	}
	return text, nil
}
