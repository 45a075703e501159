package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Config struct {
	URL         string `yaml:"url"`
	RealtimeURL string `yaml:"realtimeUrl"`
	APIKey      string `yaml:"apiKey"`
}

// Client talks to the managed backend's REST surface. Both writes are
// upserts (check-ins on (user_id, date), streaks on user_id), so every
// call is safe to repeat — the queue replay depends on that.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    http.DefaultClient,
	}
}

func (c *Client) UpsertCheckin(ctx context.Context, p model.CheckinPayload) (*model.Checkin, error) {
	endpoint := c.baseURL + "/rest/v1/checkins?on_conflict=user_id,date"

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check-in: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")

	var rows []model.Checkin
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("upsert returned no representation for %s/%s", p.UserID, p.Date)
	}
	return &rows[0], nil
}

// ListCheckins returns the user's full check-in history, most recent
// first. The streak recomputation walks this from the top.
func (c *Client) ListCheckins(ctx context.Context, userID string) ([]model.Checkin, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/checkins?user_id=eq.%s&order=date.desc",
		c.baseURL, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var rows []model.Checkin
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GetTodayCheckin(ctx context.Context, userID, date string) (*model.Checkin, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/checkins?user_id=eq.%s&date=eq.%s",
		c.baseURL, url.QueryEscape(userID), url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var rows []model.Checkin
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetStreak returns a zero streak rather than an error when the user has
// no row yet.
func (c *Client) GetStreak(ctx context.Context, userID string) (*model.Streak, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/streaks?user_id=eq.%s",
		c.baseURL, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var rows []model.Streak
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &model.Streak{UserID: userID}, nil
	}
	return &rows[0], nil
}

func (c *Client) UpsertStreak(ctx context.Context, s *model.Streak) error {
	endpoint := c.baseURL + "/rest/v1/streaks?on_conflict=user_id"

	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal streak: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	return c.do(req, nil)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Logger().Warn("remote request failed",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
