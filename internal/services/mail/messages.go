package mail

import (
	"fmt"
	"html"
)

// OTPMessage builds the verification passcode email.
//
// The wording mirrors the notification copy operators approved: the code, who
// it is for, and the ten-minute window.
func OTPMessage(to, name, code string) Message {
	escaped := html.EscapeString(name)
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Verify Your DevSphere Admin Account",
		HTML: fmt.Sprintf(
			`<p>Hi <strong>%s</strong>,</p>`+
				`<p>Thank you for registering as an admin on DevSphere! To complete your registration, please use the following One-Time Password (OTP):</p>`+
				`<p style="font-size:32px;font-weight:bold;letter-spacing:8px;text-align:center">%s</p>`+
				`<p><strong>This OTP expires in 10 minutes.</strong></p>`+
				`<p>If you didn't request this verification, please ignore this email.</p>`+
				`<p>Best regards,<br>The DevSphere Team</p>`,
			escaped, html.EscapeString(code)),
	}
}

// WelcomeMessage builds the post-verification welcome email.
func WelcomeMessage(to, name string) Message {
	escaped := html.EscapeString(name)
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Welcome to DevSphere",
		HTML: fmt.Sprintf(
			`<p>Hi <strong>%s</strong>,</p>`+
				`<p>Your email is verified and your admin account is ready. You can now sign in and start publishing events.</p>`+
				`<p>Best regards,<br>The DevSphere Team</p>`,
			escaped),
	}
}
