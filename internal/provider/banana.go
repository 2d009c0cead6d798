package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bananagame/platform/internal/domain"
	"github.com/bananagame/platform/internal/game"
)

// DefaultBananaURL is the public Banana puzzle endpoint.
const DefaultBananaURL = "https://marcconrad.com/uob/banana/api.php"

// BananaClient fetches trivia puzzles from the Banana API. Each response is
// an image URL plus its numeric solution.
type BananaClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewBananaClient creates a Banana API client. An empty baseURL falls back
// to the public endpoint.
func NewBananaClient(baseURL string, logger *slog.Logger) *BananaClient {
	if baseURL == "" {
		baseURL = DefaultBananaURL
	}
	return &BananaClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchQuestion retrieves the next puzzle. Failures surface as
// PROVIDER_ERROR with no retry; the game treats them as atomic.
func (c *BananaClient) FetchQuestion(ctx context.Context) (game.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return game.Question{}, domain.ErrProvider("create request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return game.Question{}, domain.ErrProvider("banana api unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return game.Question{}, domain.ErrProvider(fmt.Sprintf("banana api returned %d", resp.StatusCode), nil)
	}

	var payload struct {
		Question string `json:"question"`
		Solution int    `json:"solution"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return game.Question{}, domain.ErrProvider("decode response", err)
	}
	if payload.Question == "" {
		return game.Question{}, domain.ErrProvider("banana api returned empty question", nil)
	}

	c.logger.Debug("question fetched", "question", payload.Question)
	return game.Question{Question: payload.Question, Solution: payload.Solution}, nil
}
