package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type embedReq struct {
	Content content `json:"content"`
}

type embedResp struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gemini: embed rate wait: %w", err)
	}

	var out []float32
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		vals, err := c.embed(ctx, text)
		if err != nil {
			return err
		}
		out = vals
		return nil
	})
	return out, err
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(embedReq{Content: content{Parts: []part{{Text: text}}}})
	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s", c.baseURL, c.embedModel, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gemini embed: status %d: %s", resp.StatusCode, msg)
	}

	var result embedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gemini embed decode: %w", err)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty vector")
	}
	return result.Embedding.Values, nil
}
