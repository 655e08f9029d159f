package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ProviderGemini routes requests to Gemini's OpenAI-compatible endpoint.
	ProviderGemini = "gemini"
	// ProviderOpenAI routes requests to the OpenAI API.
	ProviderOpenAI = "openai"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	geminiModel   = "gemini-2.0-flash"
	openAIModel   = "gpt-4o-mini"
)

var (
	advisorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "canvas_helper",
		Subsystem: "ai",
		Name:      "advisory_duration_seconds",
		Help:      "Duration of lead time advisory requests",
	}, []string{"model"})

	advisorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canvas_helper",
		Subsystem: "ai",
		Name:      "advisory_failures_total",
		Help:      "Number of lead time advisory requests that produced no recommendation",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the chat completion advisor.
type OpenAIConfig struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Logger    zerolog.Logger
}

// OpenAIAdvisor implements LeadTimeAdvisor against an OpenAI-compatible chat completion API.
type OpenAIAdvisor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAdvisor builds a new advisor using the provided configuration.
func NewOpenAIAdvisor(cfg OpenAIConfig) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("advisor api key is required")
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		if cfg.Model == "" {
			cfg.Model = geminiModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = geminiBaseURL
		}
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = openAIModel
		}
	default:
		return nil, fmt.Errorf("unsupported advisor provider %q", cfg.Provider)
	}
	cfg.Provider = provider

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 16
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIAdvisor{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/canvas-helper-api/pkg/ai/openai"),
		logger: logger.With().Str("component", "lead_time_advisor").Logger(),
	}, nil
}

// RecommendLeadTime asks the model for a start lead time and parses the first number of its reply.
func (a *OpenAIAdvisor) RecommendLeadTime(parent context.Context, input LeadTimeInput) (int, error) {
	ctx, span := a.tracer.Start(parent, "advisor.recommend_lead_time", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.String("provider", a.cfg.Provider),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildLeadTimePrompt(input),
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	advisorDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, a.fail(span, fmt.Errorf("advisor request: %w", err))
	}

	if len(resp.Choices) == 0 {
		return 0, a.fail(span, fmt.Errorf("no choices returned from advisor"))
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.logger.Debug().Str("title", input.Title).Str("reply", reply).Msg("advisor replied")

	days, err := ParseLeadDays(reply)
	if err != nil {
		return 0, a.fail(span, err)
	}

	span.SetAttributes(attribute.Int("lead_days", days))
	return days, nil
}

func (a *OpenAIAdvisor) fail(span trace.Span, err error) error {
	advisorFailures.WithLabelValues(a.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// BuildLeadTimePrompt renders the single-turn prompt sent for one assignment.
func BuildLeadTimePrompt(input LeadTimeInput) string {
	points := "N/A"
	if input.Points != nil {
		points = strconv.FormatFloat(*input.Points, 'f', -1, 64)
	}

	builder := strings.Builder{}
	builder.WriteString("Analyze this college assignment and recommend how many days before the due date a student should start working on it.\n\n")
	builder.WriteString("Assignment Title: ")
	builder.WriteString(input.Title)
	builder.WriteString("\nCourse: ")
	builder.WriteString(input.CourseName)
	builder.WriteString("\nPoints: ")
	builder.WriteString(points)
	builder.WriteString("\n\nConsider the assignment type (quiz, exam, essay, project, discussion, homework), ")
	builder.WriteString("its typical difficulty and time requirements, and the points value as a signal of importance.\n\n")
	builder.WriteString("Respond with ONLY a single number: the days to start before the due date. For example \"5\" means start 5 days before.")
	return builder.String()
}
