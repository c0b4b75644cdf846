package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/yuin/goldmark"
)

const VerificationSubject = "Verify your email for DermaAI"

const verificationBody = `## Confirm Your Email Address

Thank you for signing up for DermaAI. To complete your registration, please click the button below to verify your email address.
`

const verificationFooter = `If you did not create an account, no further action is required.`

var layout = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Verify Your Email - DermaAI</title>
<style>
body { margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; background-color: #0c111f; color: #e2e8f0; }
.container { max-width: 600px; margin: 40px auto; background-color: #111827; border: 1px solid #374151; border-radius: 16px; overflow: hidden; }
.header { padding: 24px; text-align: center; background: linear-gradient(90deg, #1e3a8a, #14b8a6); }
.header h1 { margin: 0; color: #ffffff; font-size: 28px; }
.content { padding: 32px; text-align: center; }
.content p { font-size: 16px; line-height: 1.5; color: #9ca3af; }
.content h2 { color: #ffffff; font-size: 24px; }
.button { display: inline-block; margin-top: 24px; padding: 14px 28px; background: linear-gradient(90deg, #3b82f6, #14b8a6); color: #ffffff; text-decoration: none; font-weight: bold; border-radius: 8px; font-size: 16px; }
.footer { padding: 24px; text-align: center; font-size: 12px; color: #6b7280; border-top: 1px solid #374151; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>DermaAI</h1></div>
<div class="content">
{{.Body}}
<a href="{{.Link}}" class="button">Verify Email</a>
{{.Footer}}
</div>
<div class="footer">&copy; {{.Year}} DermaAI. All Rights Reserved.</div>
</div>
</body>
</html>
`))

var md = goldmark.New()

// VerificationLink builds "{frontend}/verify-email?email=..&token=..".
func VerificationLink(frontendURL, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return frontendURL + "/verify-email?" + q.Encode()
}

func VerificationMessage(to, link string, now time.Time) (Message, error) {
	body, err := renderMarkdown(verificationBody)
	if err != nil {
		return Message{}, err
	}
	footer, err := renderMarkdown(verificationFooter)
	if err != nil {
		return Message{}, err
	}
	var out bytes.Buffer
	err = layout.Execute(&out, map[string]interface{}{
		"Body":   body,
		"Footer": footer,
		"Link":   template.URL(link),
		"Year":   now.Year(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render verification mail: %w", err)
	}
	return Message{To: to, Subject: VerificationSubject, HTML: out.String()}, nil
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
