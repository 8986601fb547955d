package domain

// Enrollment is the provisioning payload handed to a client so it can add
// the account to an authenticator app. QRCode is a data URL carrying a
// base64-encoded PNG of the otpauth URI.
type Enrollment struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}
