package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridMailer delivers mail through the SendGrid v3 API.
type SendgridMailer struct {
	key           string
	from          *sgmail.Email
	subjectPrefix string
}

// NewSendgridMailer constructs a SendGrid-backed mailer.
func NewSendgridMailer(apiKey, fromName, fromEmail, subjectPrefix string) *SendgridMailer {
	return &SendgridMailer{
		key:           apiKey,
		from:          sgmail.NewEmail(fromName, fromEmail),
		subjectPrefix: subjectPrefix,
	}
}

// Send delivers a single message.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjectPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)
	mail.AddContent(sgmail.NewContent("text/plain", msg.Body))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(mail)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
