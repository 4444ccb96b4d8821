// Package notify sends WhatsApp messages through the Fonnte provider.
// Delivery is best effort: every outcome is a structured result, never a
// panic, and never a reason to fail the complaint workflow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.fonnte.com/send"

// Result is the structured outcome of one send attempt.
type Result struct {
	Success bool
	// Detail is a short machine-readable summary: the provider detail on
	// success, or a failure reason such as FONNTE_TOKEN_MISSING.
	Detail string
	// Raw holds the provider response body (or a synthesized error payload)
	// for the audit record.
	Raw json.RawMessage
}

// Client is the outbound Fonnte HTTP client.
type Client struct {
	token       string
	countryCode string
	endpoint    string
	httpClient  *http.Client
}

func NewClient(token, countryCode string) *Client {
	if countryCode == "" {
		countryCode = "62"
	}
	return &Client{
		token:       token,
		countryCode: countryCode,
		endpoint:    defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NormalizePhone reduces a raw phone number to international digit-only
// form: leading 0 becomes the country prefix, a bare subscriber number
// starting with 8 gets the prefix applied.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(digits, "0"):
		return "62" + digits[1:]
	case strings.HasPrefix(digits, "8"):
		return "62" + digits
	}
	return digits
}

func failure(reason string) Result {
	raw, _ := json.Marshal(map[string]string{"error": reason})
	return Result{Success: false, Detail: reason, Raw: raw}
}

// Send performs a single provider call. There is no retry loop; the caller
// records the outcome and moves on.
func (c *Client) Send(ctx context.Context, target, message string) Result {
	if c.token == "" {
		return failure("FONNTE_TOKEN_MISSING")
	}

	normalized := NormalizePhone(target)
	if normalized == "" {
		return failure("NO_VALID_TARGET")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("target", normalized)
	_ = form.WriteField("message", message)
	_ = form.WriteField("countryCode", c.countryCode)
	if err := form.Close(); err != nil {
		return failure("SEND_FAILED")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return failure("SEND_FAILED")
	}
	request.Header.Set("Authorization", c.token)
	request.Header.Set("Content-Type", form.FormDataContentType())

	response, err := c.httpClient.Do(request)
	if err != nil {
		raw, _ := json.Marshal(map[string]string{"error": "SEND_FAILED", "detail": err.Error()})
		return Result{Success: false, Detail: "SEND_FAILED", Raw: raw}
	}
	defer response.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(response.Body, 64<<10))

	var parsed struct {
		Status bool   `json:"status"`
		Detail string `json:"detail"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		raw, _ := json.Marshal(map[string]string{"error": "BAD_PROVIDER_RESPONSE", "status": fmt.Sprintf("%d", response.StatusCode)})
		return Result{Success: false, Detail: "BAD_PROVIDER_RESPONSE", Raw: raw}
	}

	detail := parsed.Detail
	if !parsed.Status {
		detail = parsed.Reason
		if detail == "" {
			detail = "PROVIDER_REJECTED"
		}
	}
	return Result{Success: parsed.Status, Detail: detail, Raw: json.RawMessage(data)}
}
