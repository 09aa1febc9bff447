package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/application/story/storyutil"
	"ether-stories-api/internal/config"
	"ether-stories-api/internal/infrastructure/storage"
	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
)

const illustrationExcerptSentences = 3

// ArkImageClient 章节插图生成适配器（Ark 风格 images/generations API）。
// 提供商返回 URL 或 base64，统一下载/解码后落盘到 MediaStore。
type ArkImageClient struct {
	provider   string
	baseURL    string
	apiKey     string
	model      string
	size       string
	httpClient *http.Client
	store      storage.MediaStore
	retry      RetryPolicy
}

func NewArkImageClient(cfg config.ImageConfig, store storage.MediaStore, retry RetryPolicy) *ArkImageClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ArkImageClient{
		provider:   cfg.Provider,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		size:       cfg.Size,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		retry:      retry,
	}
}

func (c *ArkImageClient) GenerateIllustration(ctx context.Context, prompt story.IllustrationPrompt) (*story.MediaResult, error) {
	if strings.TrimSpace(prompt.SceneHint) == "" && strings.TrimSpace(prompt.ChapterText) == "" {
		return nil, appErrors.ErrInvalidRequest.WithDetail("illustration prompt is empty")
	}

	var data []byte
	attempts, err := c.retry.Do(ctx, "image", c.provider, func(ctx context.Context) error {
		b, callErr := c.generateOnce(ctx, buildIllustrationPrompt(prompt))
		if callErr != nil {
			return callErr
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	key := fmt.Sprintf("stories/%s/chapter_%d.png", prompt.StoryID, prompt.ChapterIndex)
	ref, err := c.store.Save(ctx, key, data)
	if err != nil {
		return nil, &story.CallFailure{Attempts: attempts, Err: err}
	}

	logger.Debug(ctx, "illustration generated",
		"story_id", prompt.StoryID,
		"chapter", prompt.ChapterIndex,
		"bytes", len(data),
	)
	return &story.MediaResult{Ref: ref, Provider: c.provider, Attempts: attempts}, nil
}

// generateOnce 单次调用：请求生成接口并取回图像字节
func (c *ArkImageClient) generateOnce(ctx context.Context, promptText string) ([]byte, error) {
	body := map[string]any{
		"model":  c.model,
		"prompt": promptText,
	}
	if c.size != "" {
		body["size"] = c.size
	}

	var resp struct {
		Data []struct {
			URL string `json:"url"`
			B64 string `json:"b64_json"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "/api/v3/images/generations", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, appErrors.ErrGenerationFailed.WithDetail("no images returned")
	}

	first := resp.Data[0]
	if first.B64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(first.B64)
		if err != nil {
			return nil, appErrors.ErrGenerationFailed.WithError(err)
		}
		return decoded, nil
	}
	if first.URL == "" {
		return nil, appErrors.ErrGenerationFailed.WithDetail("image response has neither url nor b64 payload")
	}
	return c.download(ctx, first.URL)
}

func (c *ArkImageClient) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return appErrors.ErrGenerationFailed.WithError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(b)))
	if err != nil {
		return appErrors.ErrGenerationFailed.WithError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return classifyProviderError(err, appErrors.ErrGenerationFailed)
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return classifyProviderError(err, appErrors.ErrGenerationFailed)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		httpErr := fmt.Errorf("http %d: %s", res.StatusCode, storyutil.TruncateByRunes(string(bodyBytes), 512))
		return classifyHTTPStatus(res.StatusCode, httpErr, appErrors.ErrGenerationFailed)
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return appErrors.ErrGenerationFailed.WithError(err)
	}
	return nil
}

func (c *ArkImageClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.ErrGenerationFailed.WithError(err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyProviderError(err, appErrors.ErrGenerationFailed)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		httpErr := fmt.Errorf("image download http %d", res.StatusCode)
		return nil, classifyHTTPStatus(res.StatusCode, httpErr, appErrors.ErrGenerationFailed)
	}
	return io.ReadAll(res.Body)
}

func buildIllustrationPrompt(p story.IllustrationPrompt) string {
	var b strings.Builder
	b.WriteString("Children's storybook illustration, soft colors, warm and friendly, no text. ")
	b.WriteString("Story theme: ")
	b.WriteString(strings.TrimSpace(p.Theme))
	b.WriteString(". ")
	if hint := strings.TrimSpace(p.SceneHint); hint != "" {
		b.WriteString("Scene: ")
		b.WriteString(hint)
		b.WriteString(". ")
	}
	if excerpt := storyutil.FirstSentences(p.ChapterText, illustrationExcerptSentences); excerpt != "" {
		b.WriteString("From the chapter: ")
		b.WriteString(excerpt)
	}
	return b.String()
}
