package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

const maxErrorBody = 512

// HTTPRelay posts submissions to a form relay endpoint such as Formspree.
type HTTPRelay struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRelay builds a relay posting to endpoint. A nil client gets timeout applied.
func NewHTTPRelay(endpoint string, client *http.Client, timeout time.Duration) *HTTPRelay {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPRelay{endpoint: endpoint, client: client}
}

// Submit sends JSON for text-only messages and multipart when an attachment is present.
func (r *HTTPRelay) Submit(ctx context.Context, msg Message) error {
	body, contentType, err := encode(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func encode(msg Message) (io.Reader, string, error) {
	if msg.Attachment == nil {
		payload := make(map[string]interface{}, len(msg.Fields))
		for _, f := range msg.Fields {
			payload[f.Name] = f.Value
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode relay payload: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range msg.Fields {
		if err := w.WriteField(f.Name, stringify(f.Value)); err != nil {
			return nil, "", fmt.Errorf("write relay field %s: %w", f.Name, err)
		}
	}

	att := msg.Attachment
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, att.Field, att.Filename))
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create attachment part: %w", err)
	}
	if _, err := part.Write(att.Content); err != nil {
		return nil, "", fmt.Errorf("write attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
