package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/config"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	sender sender
}

func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		from:   from,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	if toEmail == "" {
		return fmt.Errorf("no recipient for listing %q", listingTitle)
	}
	return m.sender.DialAndSend(listingCreatedMessage(m.from, toEmail, listingTitle))
}

func listingCreatedMessage(from, to, title string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", fmt.Sprintf("Your listing '%s' has been created successfully.", title))
	return msg
}
