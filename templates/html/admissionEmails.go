package templates

import (
	"fmt"
	"html"
)

// RenderLoginCode generates the HTML for the one-time login code email
func RenderLoginCode(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Your Login Code</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #1e3a8a 0%%, #3b82f6 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .code-box { background: #eff6ff; border: 1px solid #bfdbfe; border-radius: 12px; padding: 20px; margin: 20px 0; text-align: center; }
    .code-box span { color: #1e3a8a; font-size: 32px; font-weight: 700; letter-spacing: 8px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Student Login</h1>
    </div>
    <div class="content">
      <p>Use the code below to sign in to your admissions dashboard. It expires in 5 minutes and can be used once.</p>
      <div class="code-box"><span>%s</span></div>
      <p>If you did not request this code you can safely ignore this email.</p>
    </div>
    <div class="footer">
      AdmitDesk Admissions Office &middot; This is an automated message, please do not reply.
    </div>
  </div>
</body>
</html>`, html.EscapeString(code))
}

// RenderApplicationReceived generates the HTML for the registration confirmation email
func RenderApplicationReceived(firstName, course string) string {
	body := fmt.Sprintf(`Hi %s,

Thank you for applying to the %s programme. Your application has been received and is now pending review by the admissions office.

You can sign in to the student dashboard with your email address at any time to check the status of your application. Decisions are typically made within 10 business days.`,
		firstName, course)
	return RenderGenericEmail("Application Received", body)
}

// RenderPendingDigest generates the HTML for the daily digest sent to the admissions office
func RenderPendingDigest(pending, approved, declined int64) string {
	body := fmt.Sprintf(`Good morning,

Here is today's admissions review queue:

Pending applications: %d
Approved so far: %d
Declined so far: %d

Sign in to the admin dashboard to review the pending queue.`,
		pending, approved, declined)
	return RenderGenericEmail("Daily Admissions Digest", body)
}
