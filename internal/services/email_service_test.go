package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSESMailer_SendWelcome(t *testing.T) {
	var input *ses.SendEmailInput
	client := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			input = params
			return &ses.SendEmailOutput{MessageId: aws.String("abc")}, nil
		},
	}
	mailer := NewSESMailerWithClient(client, "noreply@initium.app", "INITIUM", "https://initium.app", slog.Default())

	err := mailer.SendWelcome(context.Background(), "hero@example.com", "hero")

	require.NoError(t, err)
	require.NotNil(t, input)
	assert.Equal(t, "INITIUM <noreply@initium.app>", aws.ToString(input.Source))
	assert.Equal(t, []string{"hero@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(input.Message.Body.Text.Data), "hero")
	assert.Contains(t, aws.ToString(input.Message.Body.Html.Data), "https://initium.app")
}

func TestSESMailer_SendWelcome_Error(t *testing.T) {
	client := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	mailer := NewSESMailerWithClient(client, "noreply@initium.app", "", "https://initium.app", slog.Default())

	err := mailer.SendWelcome(context.Background(), "hero@example.com", "hero")

	assert.ErrorContains(t, err, "throttled")
}

func TestLogMailer_NeverFails(t *testing.T) {
	assert.NoError(t, NewLogMailer(slog.Default()).SendWelcome(context.Background(), "hero@example.com", "hero"))
}
