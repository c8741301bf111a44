package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/promptcraft/server/internal/shared/config"
)

// OpenAIClient implements Provider against an OpenAI-compatible API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
	client     *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible provider client.
func NewOpenAIClient(cfg *config.AIConfig) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// GenerateText performs a non-streaming chat completion.
func (c *OpenAIClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*Generation, error) {
	messages := make([]map[string]string, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userPrompt})

	body := map[string]any{
		"model":    c.textModel,
		"messages": messages,
	}

	respBody, err := c.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage *Usage `json:"usage"`
	}
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	return &Generation{
		Text:  resp.Choices[0].Message.Content,
		Usage: resp.Usage,
	}, nil
}

// GenerateImage generates one image and returns the decoded payload.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (*ImageGeneration, error) {
	body := map[string]any{
		"model":           c.imageModel,
		"prompt":          prompt,
		"n":               1,
		"response_format": "b64_json",
	}

	respBody, err := c.doRequest(ctx, "/images/generations", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var resp struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	return &ImageGeneration{
		Data:        data,
		ContentType: "image/png",
	}, nil
}

func (c *OpenAIClient) doRequest(ctx context.Context, path string, body map[string]any) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(msg))
	}

	return resp.Body, nil
}
