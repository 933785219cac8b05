package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Hayacku/initium/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Mailer sends account notifications
type Mailer interface {
	SendWelcome(ctx context.Context, email, username string) error
}

// SESClient is the subset of the SES API used by SESMailer
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends mail through Amazon SES
type SESMailer struct {
	client      SESClient
	fromAddress string
	appURL      string
	logger      *slog.Logger
}

// NewSESMailer loads AWS credentials from the default chain
func NewSESMailer(ctx context.Context, region, fromAddress, fromName, appURL string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESMailerWithClient(ses.NewFromConfig(cfg), fromAddress, fromName, appURL, logger), nil
}

func NewSESMailerWithClient(client SESClient, fromAddress, fromName, appURL string, logger *slog.Logger) *SESMailer {
	from := fromAddress
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromAddress)
	}
	return &SESMailer{client: client, fromAddress: from, appURL: appURL, logger: logger}
}

func (m *SESMailer) SendWelcome(ctx context.Context, email, username string) error {
	textBody := fmt.Sprintf(`Bienvenue sur INITIUM, %s !

Ton aventure commence maintenant. Connecte-toi pour lancer ta première quête :
%s

Ceci est un message automatique, merci de ne pas y répondre.
`, username, m.appURL)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h1>Bienvenue sur INITIUM, %s !</h1>
    <p>Ton aventure commence maintenant.</p>
    <p><a href="%s">Lancer ta première quête</a></p>
    <p style="color: #666; font-size: 12px;">Ceci est un message automatique, merci de ne pas y répondre.</p>
</body>
</html>
`, username, m.appURL)

	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Bienvenue sur INITIUM")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("welcome email sent",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// LogMailer is used when outbound mail is disabled. It only logs.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendWelcome(_ context.Context, email, _ string) error {
	m.logger.Debug("email disabled, skipping welcome email", slog.String("email", logger.SanitizedEmail(email)))
	return nil
}
