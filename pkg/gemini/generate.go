package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type generateReq struct {
	Contents []content `json:"contents"`
}

type generateResp struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate runs one completion and returns the raw model text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini: generate rate wait: %w", err)
	}

	var out string
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		text, err := c.generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(generateReq{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.genModel, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini generate: status %d: %s", resp.StatusCode, msg)
	}

	var result generateResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini generate decode: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: no candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
