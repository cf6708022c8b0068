package mailer

import (
	"context"
	"encoding/json"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareBuildsV3Payload(t *testing.T) {
	m := NewSendGrid("key", "TKMProject", "info@tkmproject.org")
	body := sgmail.GetRequestBody(m.prepare(Message{
		ToName:    "Naledi Dube",
		ToAddress: "naledi@example.com",
		Subject:   "Your application",
		Text:      "Thanks",
	}))

	var decoded struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "info@tkmproject.org", decoded.From.Email)
	require.Len(t, decoded.Personalizations, 1)
	assert.Equal(t, "[TKMProject] Your application", decoded.Personalizations[0].Subject)
	assert.Equal(t, "naledi@example.com", decoded.Personalizations[0].To[0].Email)
	require.Len(t, decoded.Content, 1)
	assert.Equal(t, "text/plain", decoded.Content[0].Type)
}

func TestSendRequiresRecipient(t *testing.T) {
	m := NewSendGrid("key", "TKMProject", "info@tkmproject.org")
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{ToAddress: "a@b.co"}), context.Canceled)
}
