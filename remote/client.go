package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"exoserve/ml"
)

// Client calls the authoritative classification endpoint. One bounded attempt
// per request, no retry, no state between requests.
type Client struct {
	url    string
	apiKey string
	client *http.Client
	log    *zap.Logger
}

func NewClient(url, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Classify dispatches the candidate and returns the normalized result, or a
// *CallError tagging the failure.
func (c *Client) Classify(ctx context.Context, record ml.CandidateRecord) (ml.ClassificationResult, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return ml.ClassificationResult{}, &CallError{Kind: KindUnknown, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return ml.ClassificationResult{}, &CallError{Kind: KindUnknown, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Exoplanet-Research-Platform/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ml.ClassificationResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ml.ClassificationResult{}, classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ml.ClassificationResult{}, &CallError{
			Kind:    KindProtocol,
			Status:  resp.StatusCode,
			Message: extractErrorMessage(body),
		}
	}

	result, err := decodeResult(body)
	if err != nil {
		c.log.Warn("malformed response from classification service", zap.Error(err))
		return ml.ClassificationResult{}, &CallError{Kind: KindInvalidResponse, Message: err.Error()}
	}

	// The identifier is the one field the proxy can repair from its own
	// request; a missing verdict or confidence is the remote contract's
	// breach to own and passes through as decoded.
	if result.CandidateIdentifier == "" {
		c.log.Warn("response missing candidateIdentifier, backfilling from request",
			zap.String("id", record.CandidateIdentifier))
		result.CandidateIdentifier = record.CandidateIdentifier
	}
	return result, nil
}

func classifyTransportError(err error) *CallError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &CallError{Kind: KindTimeout, Message: "the classification service did not respond in time", Err: err}
	}
	return &CallError{Kind: KindUnavailable, Message: "unable to reach the classification service", Err: err}
}

func decodeResult(body []byte) (ml.ClassificationResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ml.ClassificationResult{}, errors.New("response body is not a JSON object")
	}
	var result ml.ClassificationResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return ml.ClassificationResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// extractErrorMessage pulls a best-effort message out of an error body,
// falling back to a truncated raw excerpt.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	excerpt := string(bytes.TrimSpace(body))
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	if excerpt == "" {
		excerpt = "no error detail provided"
	}
	return excerpt
}
