package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/application/story/storyutil"
	"ether-stories-api/internal/config"
	"ether-stories-api/internal/infrastructure/storage"
	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
)

// OpenAI TTS 单次请求的输入上限
const speechMaxInputRunes = 4096

// OpenAISpeechSynthesizer 章节朗读音频适配器（OpenAI speech API）
type OpenAISpeechSynthesizer struct {
	provider     string
	model        string
	defaultVoice string
	client       *openai.Client
	store        storage.MediaStore
	retry        RetryPolicy
}

func NewOpenAISpeechSynthesizer(cfg config.SpeechConfig, store storage.MediaStore, retry RetryPolicy) *OpenAISpeechSynthesizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient.Timeout = cfg.Timeout
	} else {
		clientCfg.HTTPClient.Timeout = 120 * time.Second
	}
	return &OpenAISpeechSynthesizer{
		provider:     cfg.Provider,
		model:        cfg.Model,
		defaultVoice: cfg.DefaultVoice,
		client:       openai.NewClientWithConfig(clientCfg),
		store:        store,
		retry:        retry,
	}
}

func (s *OpenAISpeechSynthesizer) Synthesize(ctx context.Context, prompt story.SpeechPrompt) (*story.MediaResult, error) {
	text := strings.TrimSpace(prompt.Text)
	if text == "" {
		return nil, appErrors.ErrInvalidRequest.WithDetail("speech input text is empty")
	}
	text = storyutil.TruncateByRunes(text, speechMaxInputRunes)

	voice := strings.TrimSpace(prompt.Voice)
	if voice == "" {
		voice = s.defaultVoice
	}

	var data []byte
	attempts, err := s.retry.Do(ctx, "speech", s.provider, func(ctx context.Context) error {
		resp, callErr := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(s.model),
			Input:          text,
			Voice:          openai.SpeechVoice(voice),
			ResponseFormat: openai.SpeechResponseFormatMp3,
		})
		if callErr != nil {
			return classifySpeechError(callErr)
		}
		defer resp.Close()

		b, readErr := io.ReadAll(resp)
		if readErr != nil {
			return classifyProviderError(readErr, appErrors.ErrGenerationFailed)
		}
		if len(b) == 0 {
			return appErrors.ErrGenerationFailed.WithDetail("empty audio payload")
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	key := fmt.Sprintf("stories/%s/chapter_%d.mp3", prompt.StoryID, prompt.ChapterIndex)
	ref, err := s.store.Save(ctx, key, data)
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	logger.Debug(ctx, "narration synthesized",
		"story_id", prompt.StoryID,
		"chapter", prompt.ChapterIndex,
		"voice", voice,
		"bytes", len(data),
	)
	return &story.MediaResult{Ref: ref, Provider: s.provider, Attempts: attempts}, nil
}

func classifySpeechError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPStatus(apiErr.HTTPStatusCode, err, appErrors.ErrGenerationFailed)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyHTTPStatus(reqErr.HTTPStatusCode, err, appErrors.ErrGenerationFailed)
	}
	return classifyProviderError(err, appErrors.ErrGenerationFailed)
}
