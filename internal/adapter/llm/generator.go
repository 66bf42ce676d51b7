package llm

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderDemo      = "demo"
)

var (
	ErrNoAPIKey      = errors.New("no API key configured")
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Config selects and tunes the hosted model.
type Config struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	Organization string
}

// Generator answers prompts with a langchaingo model.
type Generator struct {
	model  llms.Model
	name   string
	cfg    Config
	prompt *template.Template
}

// New creates the provider client named in cfg. ErrNoAPIKey means the caller
// should run in demo mode.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic, "":
		model, err = anthropic.New(
			anthropic.WithModel(cfg.Model),
			anthropic.WithToken(cfg.APIKey),
		)
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	return NewGenerator(model, cfg)
}

// NewGenerator wraps an existing model.
func NewGenerator(model llms.Model, cfg Config) (*Generator, error) {
	tmpl, err := loadPrompt("templates/answer.txt")
	if err != nil {
		return nil, err
	}
	return &Generator{
		model:  model,
		name:   cfg.Model,
		cfg:    cfg,
		prompt: tmpl,
	}, nil
}

func loadPrompt(name string) (*template.Template, error) {
	content, err := promptTemplates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

func (g *Generator) ModelName() string { return g.name }

type promptData struct {
	port.Prompt
	Organization string
}

// Render returns the exact text sent to the model.
func (g *Generator) Render(p port.Prompt) (string, error) {
	var buf bytes.Buffer
	if err := g.prompt.Execute(&buf, promptData{Prompt: p, Organization: g.cfg.Organization}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// Generate sends one user turn and returns the first choice. The call is
// bounded by the configured timeout.
func (g *Generator) Generate(ctx context.Context, p port.Prompt) (string, error) {
	text, err := g.Render(p)
	if err != nil {
		return "", err
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	opts := []llms.CallOption{llms.WithTemperature(g.cfg.Temperature)}
	if g.cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.cfg.MaxTokens))
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	logger.FromContext(ctx).Debug("Generated answer",
		"model", g.name,
		"prompt_chars", len(text),
		"duration", time.Since(start).Round(time.Millisecond))
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
