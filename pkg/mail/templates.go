package mail

import (
	"fmt"
	"strings"
	"time"
)

// VerificationMessage builds the email carrying a signup verification code.
func VerificationMessage(to, universityName, code string, expiry time.Duration) Message {
	minutes := int(expiry.Minutes())
	body := strings.Join([]string{
		fmt.Sprintf("Your verification code for %s is:", universityName),
		"",
		"    " + code,
		"",
		fmt.Sprintf("The code expires in %d minutes. If you did not request it, ignore this email.", minutes),
	}, "\r\n")

	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("%s signup verification code", universityName),
		Body:    body,
	}
}

// PasswordResetMessage builds the email carrying a password reset link.
func PasswordResetMessage(to, resetURL string, expiry time.Duration) Message {
	minutes := int(expiry.Minutes())
	body := strings.Join([]string{
		"A password reset was requested for your account.",
		"",
		"Open the link below to choose a new password:",
		"",
		"    " + resetURL,
		"",
		fmt.Sprintf("The link expires in %d minutes. If you did not request a reset, ignore this email.", minutes),
	}, "\r\n")

	return Message{
		To:      []string{to},
		Subject: "Password reset request",
		Body:    body,
	}
}

// PasskeyMessage builds the email delivering a company signup passkey.
func PasskeyMessage(to, companyName, passkey string) Message {
	body := strings.Join([]string{
		fmt.Sprintf("Hello %s,", companyName),
		"",
		"Use the passkey below to create your recruiter account:",
		"",
		"    " + passkey,
		"",
		"Keep the passkey confidential.",
	}, "\r\n")

	return Message{
		To:      []string{to},
		Subject: "Your recruiter signup passkey",
		Body:    body,
	}
}
