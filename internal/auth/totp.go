package auth

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultTOTPIssuer = "INITIUM"
	totpSecretSize    = 20 // 160 bits, 32 base32 chars
	totpPeriod        = 30
	totpSkew          = 1
	qrCodeSize        = 256
)

var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// TOTPManager generates and validates RFC 6238 codes (SHA1, 6 digits, 30s)
type TOTPManager struct {
	issuer string
	now    func() time.Time
}

func NewTOTPManager(issuer string) *TOTPManager {
	if issuer == "" {
		issuer = DefaultTOTPIssuer
	}
	return &TOTPManager{issuer: issuer, now: time.Now}
}

// GenerateSecret returns a fresh base32 secret and its otpauth:// URI for
// accountName.
func (tm *TOTPManager) GenerateSecret(accountName string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// ProvisioningURI builds the otpauth:// URI for an existing secret
func (tm *TOTPManager) ProvisioningURI(secret, accountName string) (string, error) {
	raw, err := base32NoPad.DecodeString(strings.ToUpper(strings.TrimRight(secret, "=")))
	if err != nil {
		return "", fmt.Errorf("invalid TOTP secret: %w", err)
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build TOTP uri: %w", err)
	}
	return key.URL(), nil
}

// QRCodeDataURL renders uri as a PNG data URL
func (tm *TOTPManager) QRCodeDataURL(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Validate accepts codes for the current step and one step either side.
// A code may be replayed within that window.
func (tm *TOTPManager) Validate(secret, code string) bool {
	if secret == "" {
		return false
	}
	valid, err := totp.ValidateCustom(code, secret, tm.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

// GenerateCode returns the code for secret at t. Used by tests and tooling.
func (tm *TOTPManager) GenerateCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
