package ai

import (
	"context"
	"log"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const defaultDeployment = "gpt-35-turbo"

// Client generates report insights through Azure OpenAI. A Client without
// credentials is valid and reports itself disabled.
type Client struct {
	api        *openai.Client
	deployment string
}

// NewClientFromEnv reads AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and
// AZURE_OPENAI_DEPLOYMENT_NAME.
func NewClientFromEnv() *Client {
	endpoint := global.GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", "")
	apiKey := global.GetEnvOrDefault("AZURE_OPENAI_API_KEY", "")
	deployment := global.GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", defaultDeployment)

	if endpoint == "" || apiKey == "" {
		log.Println("AI service disabled - Azure OpenAI credentials not provided")
		log.Println("Required: AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY environment variables")
		return &Client{deployment: deployment}
	}

	log.Println("AI service initialized with Azure OpenAI")
	return NewClient(deployment,
		option.WithBaseURL(endpoint),
		option.WithAPIKey(apiKey),
	)
}

func NewClient(deployment string, opts ...option.RequestOption) *Client {
	api := openai.NewClient(opts...)
	return &Client{api: &api, deployment: deployment}
}

// IsEnabled returns whether the client can reach a model.
func (c *Client) IsEnabled() bool {
	return c != nil && c.api != nil
}

func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !c.IsEnabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(800),
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		log.Printf("AI API Error: %v", err)
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// AIError represents an AI service error
type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
