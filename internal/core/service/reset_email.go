package service

import (
	"fmt"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

const resetSubject = "Password Recovery - Tracker"

// buildResetEmail assembles the two-part recovery message around the reset
// link. The link expires one hour after issuance.
func buildResetEmail(to, firstName, username, link string) ports.Email {
	text := fmt.Sprintf(`Hi %s,

You requested a password reset for the account '%s'.

Follow this link to choose a new password:
%s

The link expires in 1 hour.

If you did not request this change, ignore this message.

---
Tracker - Sales Management
`, firstName, username, link)

	html := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2 style="color: #4F46E5;">Password Recovery</h2>
    <p>Hi <strong>%s</strong>,</p>
    <p>You requested a password reset for the account <code>%s</code>.</p>
    <p>
        <a href="%s"
           style="display: inline-block; padding: 12px 24px; background: #4F46E5; color: white;
                  text-decoration: none; border-radius: 6px; font-weight: 600;">
            Reset Password
        </a>
    </p>
    <p style="color: #666; font-size: 14px;">
        Or copy this link into your browser:<br>
        <code>%s</code>
    </p>
    <p style="color: #999; font-size: 12px;">
        The link expires in 1 hour.<br>
        If you did not request this change, ignore this message.
    </p>
    <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
    <p style="color: #999; font-size: 12px;">Tracker - Sales Management</p>
</body>
</html>
`, firstName, username, link, link)

	return ports.Email{
		To:       to,
		Subject:  resetSubject,
		TextBody: text,
		HTMLBody: html,
	}
}
