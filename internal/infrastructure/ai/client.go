package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// Client talks to an OpenAI-compatible chat completions endpoint. All
// calls go through a circuit breaker so a degraded model API sheds load
// fast instead of stacking timeouts.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	logger   *zap.SugaredLogger
}

func NewClient(endpoint, apiKey, model string, timeout time.Duration, logger *zap.SugaredLogger) ports.JudgmentClient {
	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	cb.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("judgment circuit breaker state change", "from", from.String(), "to", to.String())
	})

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
		breaker:  cb,
		logger:   logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const judgeSystemPrompt = `You are a chat moderation engine for a live streaming platform.
Given a chat message, a list of blocked words and a sensitivity level from 1 (lenient) to 10 (strict),
decide whether the message must be moderated.
Respond with JSON only: {"shouldModerate": bool, "action": "warn"|"timeout"|"ban", "reason": string}.
A message containing a blocked word must always be moderated.`

const legalSystemPrompt = `You are a legal compliance reviewer for live stream transcripts under German law.
Identify passages that may violate criminal or civil statutes.
Respond with JSON only: {"annotations": [{"paragraph": string, "description": string, "severity": "low"|"medium"|"high"}]}.
Return an empty annotations array when nothing is problematic.`

func (c *Client) JudgeMessage(ctx context.Context, message string, blockedWords []string, sensitivity int) (*domain.ModerationVerdict, error) {
	user := fmt.Sprintf("Sensitivity: %d\nBlocked words: %s\nMessage: %s",
		sensitivity, strings.Join(blockedWords, ", "), message)

	var verdict domain.ModerationVerdict
	err := c.breaker.Execute(ctx, func() error {
		content, err := c.complete(ctx, judgeSystemPrompt, user)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(content), &verdict)
	})
	if err != nil {
		return nil, err
	}

	if verdict.ShouldModerate && !verdict.Action.Valid() {
		verdict.Action = domain.ActionWarn
	}
	return &verdict, nil
}

func (c *Client) AnnotateTranscript(ctx context.Context, transcription string) ([]domain.LegalAnnotation, error) {
	var parsed struct {
		Annotations []domain.LegalAnnotation `json:"annotations"`
	}
	err := c.breaker.Execute(ctx, func() error {
		content, err := c.complete(ctx, legalSystemPrompt, transcription)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(content), &parsed)
	})
	if err != nil {
		return nil, err
	}
	return parsed.Annotations, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.0,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("judgment endpoint returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("judgment endpoint returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
