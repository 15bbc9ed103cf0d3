package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequiresConfiguration(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 587})
	assert.False(t, p.Enabled())

	err := p.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendTemplateBuildsMessage(t *testing.T) {
	p := NewSMTP(Config{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", Password: "secret"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	p.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := p.SendTemplate(context.Background(), []string{"ops@example.com", "pm@example.com"},
		"Reminder", "bid_reminder", map[string]string{
			"GemBidNo": "GEM/2024/B/1",
			"Details":  "Laptops",
			"EndDate":  "March 02, 2024",
		})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com", "pm@example.com"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Reminder\r\n")
	assert.Contains(t, body, "To: ops@example.com, pm@example.com\r\n")
	assert.Contains(t, body, "The bid end date is on tomorrow March 02, 2024")
	assert.True(t, strings.Contains(body, "GEM/2024/B/1"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}
