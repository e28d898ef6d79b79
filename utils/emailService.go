package utils

import (
	"context"
	"fmt"
	"html"

	"capitalrise/ledger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

const sendGridMailPath = "/v3/mail/send"

// EmailNotifier delivers ledger notifications through SendGrid.
type EmailNotifier struct {
	APIKey string
	Sender string
	Host   string // empty means the public SendGrid API
	Log    *logrus.Logger
}

func NewEmailNotifier(apiKey, sender string, log *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{APIKey: apiKey, Sender: sender, Log: log}
}

// Notify sends in the background so the caller's request is not held up.
func (e *EmailNotifier) Notify(_ context.Context, n ledger.Notification) {
	if e.APIKey == "" {
		e.Log.WithField("to", n.Email).Debugf("Email disabled, dropping %q", n.Subject)
		return
	}
	go func() {
		if err := e.Send(n); err != nil {
			e.Log.WithError(err).WithField("to", n.Email).Error("Error sending email")
		}
	}()
}

// Send delivers one notification and waits for SendGrid to answer.
func (e *EmailNotifier) Send(n ledger.Notification) error {
	from := mail.NewEmail("CapitalRise", e.Sender)
	to := mail.NewEmail(n.Name, n.Email)
	body := fmt.Sprintf("<p>Dear %s,</p><p>%s</p>", html.EscapeString(n.Name), html.EscapeString(n.Body))
	message := mail.NewV3MailInit(from, n.Subject, to, mail.NewContent("text/html", getEmailTemplate(n.Title, body)))

	request := sendgrid.GetRequest(e.APIKey, sendGridMailPath, e.Host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequest(request)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", response.StatusCode, response.Body)
	}
	e.Log.WithField("to", n.Email).Infof("Email sent: %s", n.Subject)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F7F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B3D2E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2933; line-height: 1.6; }
			.content h2 { color: #0B3D2E; margin-top: 0; }
			.footer { background-color: #F4F7F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>CAPITALRISE</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 CapitalRise. All rights reserved.<br>
				Never share your password or OTP with anyone.
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent)
}
