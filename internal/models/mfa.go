package models

// TwoFASetup is returned by 2FA setup. The secret is not persisted until the
// user confirms it with a valid code.
type TwoFASetup struct {
	Secret         string `json:"secret"`
	QRCode         string `json:"qr_code"`
	ManualEntryKey string `json:"manual_entry_key"`
}
