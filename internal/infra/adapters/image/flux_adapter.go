package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/ports/adapter"
)

var _ adapter.ImageGenerator = (*FluxGenerator)(nil)

// FluxGenerator talks to the Black Forest Labs API. Generation is
// asynchronous: submit a task, then poll get_result until it is Ready.
type FluxGenerator struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
	log     *zerolog.Logger

	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewFluxGenerator(baseURL, apiKey, model string, logger *zerolog.Logger) (*FluxGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("flux: empty api key")
	}
	if baseURL == "" {
		baseURL = "https://api.bfl.ml/v1"
	}
	if model == "" {
		model = "flux-pro-1.1"
	}
	return &FluxGenerator{
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        model,
		httpc:        &http.Client{Timeout: 60 * time.Second},
		log:          logger,
		pollInterval: 1500 * time.Millisecond,
		pollTimeout:  2 * time.Minute,
	}, nil
}

type fluxSubmitResponse struct {
	ID string `json:"id"`
}

type fluxResultResponse struct {
	Status string `json:"status"`
	Result struct {
		Sample string `json:"sample"`
	} `json:"result"`
}

func (f *FluxGenerator) Generate(ctx context.Context, prompt string) (adapter.ImageResult, error) {
	taskID, err := f.submit(ctx, prompt)
	if err != nil {
		return adapter.ImageResult{}, err
	}
	f.log.Debug().Str("task_id", taskID).Msg("flux task submitted")

	deadline := time.Now().Add(f.pollTimeout)
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return adapter.ImageResult{}, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			return adapter.ImageResult{}, errors.New("flux: generation timed out")
		}
		res, err := f.result(ctx, taskID)
		if err != nil {
			return adapter.ImageResult{}, err
		}
		switch res.Status {
		case "Ready":
			if res.Result.Sample == "" {
				return adapter.ImageResult{}, errors.New("flux: ready with no sample")
			}
			return adapter.ImageResult{URL: res.Result.Sample}, nil
		case "Pending", "Queued", "Processing":
			continue
		default:
			return adapter.ImageResult{}, fmt.Errorf("flux: task %s", res.Status)
		}
	}
}

func (f *FluxGenerator) submit(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"prompt":            prompt,
		"width":             1024,
		"height":            768,
		"prompt_upsampling": false,
		"safety_tolerance":  2,
		"output_format":     "jpeg",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/"+f.model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Key", f.apiKey)

	resp, err := f.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("flux: submit http %d: %s", resp.StatusCode, string(raw))
	}
	var out fluxSubmitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("flux: decode submit: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("flux: submit returned no task id")
	}
	return out.ID, nil
}

func (f *FluxGenerator) result(ctx context.Context, taskID string) (*fluxResultResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/get_result?id="+taskID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Key", f.apiKey)

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("flux: result http %d: %s", resp.StatusCode, string(raw))
	}
	var out fluxResultResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("flux: decode result: %w", err)
	}
	return &out, nil
}
