package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func TestSendListingCreatedEmail(t *testing.T) {
	rec := &recordingSender{}
	m := &SMTPMailer{from: "noreply@example.com", sender: rec}

	require.NoError(t, m.SendListingCreatedEmail("alice@example.com", "Bike"))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, rec.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"New Listing Created"}, rec.sent[0].GetHeader("Subject"))
	var buf bytes.Buffer
	_, err := rec.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Your listing 'Bike' has been created successfully.")
}

func TestSendListingCreatedEmail_Errors(t *testing.T) {
	rec := &recordingSender{err: errors.New("535 auth failed")}
	m := &SMTPMailer{from: "noreply@example.com", sender: rec}

	assert.Error(t, m.SendListingCreatedEmail("", "Bike"))
	assert.Empty(t, rec.sent)
	assert.EqualError(t, m.SendListingCreatedEmail("a@example.com", "Bike"), "535 auth failed")
}
