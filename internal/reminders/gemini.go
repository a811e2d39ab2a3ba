package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

const systemInstruction = `You are a hydration coach. Build a daily water reminder schedule.
Every reminder time must be between the wake up time and the bed time, in 24-hour HH:mm format.
Spread reminders so the daily goal is reached before bed. Keep each message short, friendly and specific.`

// contentGenerator is the subset of *genai.Models the generator calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	models   contentGenerator
	model    string
	attempts uint
	delay    time.Duration
}

func NewGeminiGenerator(ctx context.Context, apiKey string, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiGenerator(client.Models, model), nil
}

func newGeminiGenerator(models contentGenerator, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{
		models:   models,
		model:    model,
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
}

func (generator *GeminiGenerator) Generate(ctx context.Context, request Request) (Response, error) {
	if err := request.Validate(); err != nil {
		return Response{}, err
	}

	prompt, err := buildPrompt(request)
	if err != nil {
		return Response{}, err
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.4),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	var response Response
	err = retry.Do(
		func() error {
			result, err := generator.models.GenerateContent(ctx, generator.model, genai.Text(prompt), config)
			if err != nil {
				return err
			}
			parsed, err := parseResponse(result)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			response = parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(generator.attempts),
		retry.Delay(generator.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Response{}, fmt.Errorf("generate reminders: %w", err)
	}
	return response, nil
}

func buildPrompt(request Request) (string, error) {
	profile, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode reminder request: %w", err)
	}
	return "Create reminders for this hydration profile (dailyGoal in ml):\n" + string(profile), nil
}

func parseResponse(result *genai.GenerateContentResponse) (Response, error) {
	if result == nil {
		return Response{}, fmt.Errorf("%w: empty model response", ErrInvalidResponse)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return Response{}, fmt.Errorf("%w: empty model response", ErrInvalidResponse)
	}

	var response Response
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return ValidateResponse(response)
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"reminders": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"time":    {Type: genai.TypeString, Description: "24-hour HH:mm"},
						"message": {Type: genai.TypeString},
					},
					Required: []string{"time", "message"},
				},
			},
		},
		Required: []string{"reminders"},
	}
}
