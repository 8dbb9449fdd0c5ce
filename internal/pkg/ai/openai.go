package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
)

const (
	// DefaultModel is the model written to a fresh config file.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTemperature is the default temperature for AI generation.
	DefaultTemperature = 0.7

	// DefaultMaxTokens is the default max tokens for AI generation.
	DefaultMaxTokens = 300

	// RequestIDHeader carries a per-request id for correlating verbose logs.
	RequestIDHeader = "X-Client-Request-Id"

	chatCompletionsEndpoint = "/chat/completions"
)

// reasoningModelPrefixes name the model families that take
// max_completion_tokens and only accept a temperature of 1.
var reasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// Client sends a single chat-completion request per commit message.
type Client struct {
	baseURL   string
	transport http.RoundTripper
}

// NewClient creates a Client. An empty baseURL uses the OpenAI default.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		transport: http.DefaultTransport,
	}
}

// NewClientWithTransport creates a Client that sends requests through rt.
func NewClientWithTransport(baseURL string, rt http.RoundTripper) *Client {
	c := NewClient(baseURL)
	if rt != nil {
		c.transport = rt
	}
	return c
}

// GenerateCommitMessage sends the diff to the completion endpoint and returns
// the first choice's content verbatim.
func (c *Client) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (string, error) {
	if req == nil {
		return "", errors.New("request cannot be nil")
	}

	pt := NewPromptTemplate(req.SystemPrompt)
	userPrompt, err := pt.RenderUserPrompt(&PromptData{Diff: req.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	requestID := uuid.NewString()
	capture := &captureTransport{base: c.transport, requestID: requestID}

	clientConfig := openai.DefaultConfig(req.Credential)
	if c.baseURL != "" {
		clientConfig.BaseURL = c.baseURL
	}
	clientConfig.HTTPClient = &http.Client{Transport: capture}
	client := openai.NewClientWithConfig(clientConfig)

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: pt.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	}
	applySampling(&chatReq, req)

	apperrors.LogAPIRequest(requestID, clientConfig.BaseURL+chatCompletionsEndpoint, req.Model, len(userPrompt))
	startTime := time.Now()

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", wrapAPIError(err, capture.errorBody())
	}

	if len(resp.Choices) == 0 {
		apperrors.LogAPIResponse(requestID, http.StatusOK, 0, time.Since(startTime))
		return "", apperrors.NewNoCompletionError()
	}

	content := resp.Choices[0].Message.Content
	apperrors.LogAPIResponse(requestID, http.StatusOK, len(content), time.Since(startTime))

	return content, nil
}

// isReasoningModel reports whether model belongs to a reasoning model family.
func isReasoningModel(model string) bool {
	for _, prefix := range reasoningModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// applySampling sets the token cap and temperature. go-openai omits a zero
// temperature from the body, so 0 is sent as the smallest float32 instead.
func applySampling(chatReq *openai.ChatCompletionRequest, req *GenerateRequest) {
	if isReasoningModel(req.Model) {
		chatReq.MaxCompletionTokens = req.MaxTokens
		if req.Temperature == 1 {
			chatReq.Temperature = 1
		} else {
			apperrors.Warn("Model %s only supports temperature 1; openai.temperature = %v is not sent", req.Model, req.Temperature)
		}
		return
	}

	chatReq.MaxTokens = req.MaxTokens
	if req.Temperature == 0 {
		chatReq.Temperature = math.SmallestNonzeroFloat32
	} else {
		chatReq.Temperature = float32(req.Temperature)
	}
}

// wrapAPIError converts a go-openai error into a provider AppError carrying
// the status code and the raw body the server sent.
func wrapAPIError(err error, body string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if body == "" {
			body = apiErr.Message
		}
		return apperrors.NewProviderError(apiErr.HTTPStatusCode, body, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if body == "" {
			body = string(reqErr.Body)
		}
		return apperrors.NewProviderError(reqErr.HTTPStatusCode, body, err)
	}

	// rejected by go-openai before anything was sent
	if errors.Is(err, openai.ErrReasoningModelMaxTokensDeprecated) ||
		errors.Is(err, openai.ErrReasoningModelLimitationsLogprobs) ||
		errors.Is(err, openai.ErrReasoningModelLimitationsOther) ||
		errors.Is(err, openai.ErrChatCompletionInvalidModel) {
		return apperrors.Wrap(err, apperrors.ErrConfigMalformed, "the request is not valid for the configured model").
			WithSuggestion("Check openai.model, openai.temperature and openai.max_tokens with 'brocode config list'")
	}

	// no HTTP response at all, e.g. refused connection or cancelled context
	return apperrors.Wrap(err, apperrors.ErrProvider, "failed to reach the OpenAI API")
}

// captureTransport stamps the request id header and keeps a copy of any
// non-2xx response body, which go-openai otherwise only exposes decoded.
type captureTransport struct {
	base      http.RoundTripper
	requestID string
	body      []byte
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, t.requestID)

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			apperrors.Debug("Failed to read error body: %v", readErr)
		}
		t.body = body
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}

	return resp, nil
}

func (t *captureTransport) errorBody() string {
	return string(t.body)
}
