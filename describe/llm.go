// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package describe

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/sassoftware/pdf-remediate/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LLMConfig selects and tunes the vision/text model behind LLMService.
type LLMConfig struct {
	Provider    string // openai, ollama or anthropic
	Model       string
	MaxTokens   int
	Temperature *float64
}

// LLMService implements DescriptionService and TitleService against an
// LLM provider. It performs no internal retry; retry and backoff belong
// to the ingest pipeline.
type LLMService struct {
	provider string
	model    string
	llm      llms.Model

	maxTokens   int
	temperature *float64
}

// NewLLMService creates the provider client once. API keys come from the
// conventional environment variables of each provider.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	var model llms.Model
	var err error
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		model, err = createOpenAIClient(cfg)
	case "ollama":
		model, err = createOllamaClient(cfg)
	case "anthropic":
		model, err = createAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported description provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating description client: %w", err)
	}
	logger.Debug(fmt.Sprintf("LLMService initialized: provider=%s model=%s", cfg.Provider, cfg.Model))
	return &LLMService{
		provider:    strings.ToLower(cfg.Provider),
		model:       cfg.Model,
		llm:         model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

const imageAltPrompt = "You are writing alternate text for an image inside a PDF document, " +
	"for use by screen readers. Describe the image concisely in one or two sentences. " +
	"Do not start with phrases like 'Image of'. Respond with the description only."

const linkAltPrompt = "You are writing alternate text for a hyperlink inside a PDF document, " +
	"for use by screen readers. Describe the link's purpose concisely. " +
	"Respond with the description only."

const titlePrompt = "You are naming a PDF document for its metadata title field. " +
	"Given the current title (possibly empty or a filename) and text from the first pages, " +
	"respond with a concise, human-readable document title only. " +
	"If the current title already fits, repeat it unchanged."

func (s *LLMService) ImageAltText(ctx context.Context, req ImageRequest) (string, error) {
	logger.Debug(fmt.Sprintf("ImageAltText: request=%s mime=%s bytes=%d", req.ID, req.MIME, len(req.Image)), true)

	var imagePart llms.ContentPart
	if s.provider == "openai" {
		imagePart = llms.ImageURLPart("data:" + req.MIME + ";base64," + base64.StdEncoding.EncodeToString(req.Image))
	} else {
		imagePart = llms.BinaryPart(req.MIME, req.Image)
	}
	prompt := imageAltPrompt + contextBlock(req.ContextBefore, req.ContextAfter)
	parts := []llms.ContentPart{imagePart, llms.TextPart(prompt)}

	return s.generate(ctx, parts)
}

func (s *LLMService) LinkAltText(ctx context.Context, req LinkRequest) (string, error) {
	logger.Debug(fmt.Sprintf("LinkAltText: request=%s target=%s", req.ID, req.Target), true)

	var b strings.Builder
	b.WriteString(linkAltPrompt)
	b.WriteString("\n\nLink target: ")
	b.WriteString(req.Target)
	if req.VisibleText != "" {
		b.WriteString("\nVisible link text: ")
		b.WriteString(req.VisibleText)
	}
	b.WriteString(contextBlock(req.ContextBefore, req.ContextAfter))

	return s.generate(ctx, []llms.ContentPart{llms.TextPart(b.String())})
}

func (s *LLMService) GenerateTitle(ctx context.Context, currentTitle, extractedText string) (string, error) {
	var b strings.Builder
	b.WriteString(titlePrompt)
	b.WriteString("\n\nCurrent title: ")
	if currentTitle == "" {
		b.WriteString("(none)")
	} else {
		b.WriteString(currentTitle)
	}
	b.WriteString("\n\nExtracted text:\n")
	b.WriteString(extractedText)

	return s.generate(ctx, []llms.ContentPart{llms.TextPart(b.String())})
}

func (s *LLMService) ImageFallback() string { return defaultImageFallback }

func (s *LLMService) LinkFallback() string { return defaultLinkFallback }

func (s *LLMService) generate(ctx context.Context, parts []llms.ContentPart) (string, error) {
	var callOpts []llms.CallOption
	if s.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(s.maxTokens))
	}
	if s.temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*s.temperature))
	}

	completion, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}, callOpts...)
	if err != nil {
		logger.Error(fmt.Sprintf("description model call failed: provider=%s err=%v", s.provider, err))
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Content, nil
}

func contextBlock(before, after string) string {
	if before == "" && after == "" {
		return ""
	}
	var b strings.Builder
	if before != "" {
		b.WriteString("\n\nText before the element:\n")
		b.WriteString(before)
	}
	if after != "" {
		b.WriteString("\n\nText after the element:\n")
		b.WriteString(after)
	}
	return b.String()
}

func createOpenAIClient(cfg LLMConfig) (llms.Model, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(opts...)
}

func createOllamaClient(cfg LLMConfig) (llms.Model, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	return ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(host),
	)
}

func createAnthropicClient(cfg LLMConfig) (llms.Model, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is not set")
	}
	return anthropic.New(
		anthropic.WithModel(cfg.Model),
		anthropic.WithToken(apiKey),
	)
}
