package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// RegistrationEmail is the content of a registration confirmation
type RegistrationEmail struct {
	ParentEmail  string
	ParentName   string
	ChildName    string
	SportName    string
	GroupName    string
	OptionName   string
	RegisteredOn string
}

// Notifier delivers messages triggered by registrations and staff changes
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, msg RegistrationEmail) error
	SendStaffWelcome(ctx context.Context, toEmail, toName string) error
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a sender address it
// is disabled and every send is a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From: %s <%s>", fromName, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendRegistrationConfirmation tells the parent that the child was enrolled
func (s *EmailService) SendRegistrationConfirmation(ctx context.Context, msg RegistrationEmail) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): registration confirmation to %s", msg.ParentEmail)
		return nil
	}

	subject := fmt.Sprintf("Registration confirmed: %s", msg.ChildName)
	option := msg.OptionName
	if option == "" {
		option = "standard"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
		td { padding: 4px 12px 4px 0; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Registration confirmed</h1>
		</div>
		<div class="content">
			<p>Dear %s,</p>
			<p>we have registered <strong>%s</strong> for training.</p>
			<table>
				<tr><td>Sport</td><td>%s</td></tr>
				<tr><td>Group</td><td>%s</td></tr>
				<tr><td>Attendance</td><td>%s</td></tr>
				<tr><td>Registered on</td><td>%s</td></tr>
			</table>
			<p>The trainer will contact you before the first session.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from %s. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`,
		html.EscapeString(msg.ParentName),
		html.EscapeString(msg.ChildName),
		html.EscapeString(msg.SportName),
		html.EscapeString(msg.GroupName),
		html.EscapeString(option),
		html.EscapeString(msg.RegisteredOn),
		html.EscapeString(s.appBaseURL),
	)

	textBody := fmt.Sprintf(`Dear %s,

we have registered %s for training.

Sport:         %s
Group:         %s
Attendance:    %s
Registered on: %s

The trainer will contact you before the first session.

---
This is an automated email from %s. Please do not reply.
`, msg.ParentName, msg.ChildName, msg.SportName, msg.GroupName, option, msg.RegisteredOn, s.appBaseURL)

	return s.sendEmail(ctx, msg.ParentEmail, subject, htmlBody, textBody)
}

// SendStaffWelcome invites a new trainer or administrator to sign in
func (s *EmailService) SendStaffWelcome(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): staff welcome to %s", toEmail)
		return nil
	}

	loginLink := s.appBaseURL + "/login"
	subject := "Your club staff account"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>an account has been created for you. Sign in at <a href="%s">%s</a> with this email address.
	Your administrator will give you the temporary password.</p>
</body>
</html>
`, html.EscapeString(toName), loginLink, html.EscapeString(loginLink))

	textBody := fmt.Sprintf(`Hi %s,

an account has been created for you. Sign in at %s with this email address.
Your administrator will give you the temporary password.
`, toName, loginLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail is a helper function to send emails via SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
