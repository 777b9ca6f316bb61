package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"charforge/internal/usecase"
)

const layout = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Charforge</title></head>
<body style="margin:0;padding:0;font-family:Helvetica,Arial,sans-serif;background-color:#f4f1ea;">
<table align="center" width="600" cellpadding="0" cellspacing="0" style="border-collapse:collapse;background-color:#ffffff;">
<tr><td style="padding:24px 30px;background-color:#3b2f2f;color:#f4d58d;font-size:22px;font-weight:bold;">Charforge</td></tr>
<tr><td style="padding:30px;color:#333333;font-size:16px;line-height:1.6;">
<p style="margin-top:0;">Hello {{if .Name}}{{.Name}}{{else}}adventurer{{end}},</p>
{{template "body" .}}
</td></tr>
<tr><td style="padding:16px 30px;background-color:#efe9dc;color:#777777;font-size:12px;">This message was sent by Charforge. Please do not reply.</td></tr>
</table>
</body>
</html>`

// 種類ごとの件名と本文
var bodies = map[usecase.NotificationKind]struct {
	subject string
	body    string
}{
	usecase.NotifyWelcome: {
		subject: "Welcome to Charforge",
		body:    `<p>Your account is ready. Start forging your first hero at <a href="{{.BaseURL}}">{{.BaseURL}}</a>.</p>`,
	},
	usecase.NotifyPasswordReset: {
		subject: "Reset your password",
		body: `<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="{{.BaseURL}}/reset-password?token={{.Token}}">Reset my password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`,
	},
	usecase.NotifyTemporaryPassword: {
		subject: "Your temporary password",
		body: `<p>A moderator reset your password. Use this temporary password to sign in:</p>
<p style="font-size:20px;font-weight:bold;letter-spacing:1px;">{{.TemporaryPassword}}</p>
<p>You will be asked to choose a new password right after signing in.</p>`,
	},
	usecase.NotifyCharacterApproved: {
		subject: "Your character {{.CharacterName}} was approved",
		body:    `<p>Good news: <strong>{{.CharacterName}}</strong> passed review. You can now share it in the public gallery.</p>`,
	},
	usecase.NotifyCharacterRejected: {
		subject: "Your character {{.CharacterName}} was rejected",
		body: `<p><strong>{{.CharacterName}}</strong> did not pass review.</p>
<p>Reason: {{.Reason}}</p>
<p>You can edit the character and submit it again.</p>`,
	},
	usecase.NotifyCommentApproved: {
		subject: "Your comment on {{.CharacterName}} is live",
		body:    `<p>Your comment on <strong>{{.CharacterName}}</strong> was approved and is now visible.</p>`,
	},
	usecase.NotifyCommentRejected: {
		subject: "Your comment on {{.CharacterName}} was rejected",
		body: `<p>Your comment on <strong>{{.CharacterName}}</strong> was rejected.</p>
<p>Reason: {{.Reason}}</p>`,
	},
	usecase.NotifyAccountSuspended: {
		subject: "Your account has been suspended",
		body: `<p>Your account has been suspended.</p>
<p>Reason: {{.Reason}}</p>`,
	},
	usecase.NotifyAccountReactivated: {
		subject: "Your account has been reactivated",
		body:    `<p>Your account is active again. Welcome back.</p>`,
	},
	usecase.NotifyAccountDeleted: {
		subject: "Your account has been deleted",
		body:    `<p>Your account and all of its characters and comments have been deleted.</p>`,
	},
	usecase.NotifyContactMessage: {
		subject: "[Contact] {{.Subject}}",
		body: `<p>New contact message from {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>{{.Subject}}</strong></p>
<p style="white-space:pre-wrap;">{{.Message}}</p>`,
	},
}

// テンプレートに渡す値
type templateData struct {
	Subject           string
	Name              string
	Email             string
	BaseURL           string
	CharacterName     string
	Reason            string
	Token             string
	TemporaryPassword string
	Message           string
}

// Renderer は Envelope から件名とHTML本文を作る
type Renderer struct {
	baseURL  string
	subjects map[usecase.NotificationKind]*texttemplate.Template
	pages    map[usecase.NotificationKind]*template.Template
}

func NewRenderer(baseURL string) (*Renderer, error) {
	r := &Renderer{
		baseURL:  strings.TrimRight(baseURL, "/"),
		subjects: make(map[usecase.NotificationKind]*texttemplate.Template, len(bodies)),
		pages:    make(map[usecase.NotificationKind]*template.Template, len(bodies)),
	}
	for kind, b := range bodies {
		// 件名はメールヘッダなのでHTMLエスケープしない
		subj, err := texttemplate.New(string(kind) + "_subject").Parse(b.subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", kind, err)
		}
		page, err := template.New(string(kind)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", kind, err)
		}
		if _, err := page.New("body").Parse(b.body); err != nil {
			return nil, fmt.Errorf("parse body %s: %w", kind, err)
		}
		r.subjects[kind] = subj
		r.pages[kind] = page
	}
	return r, nil
}

func (r *Renderer) Render(env Envelope) (subject string, html string, err error) {
	page, ok := r.pages[env.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", env.Kind)
	}

	data := templateData{
		Subject:           env.Param(ParamSubject),
		Name:              env.To.Name,
		Email:             env.To.Email,
		BaseURL:           r.baseURL,
		CharacterName:     env.Param(ParamCharacterName),
		Reason:            env.Param(ParamReason),
		Token:             env.Param(ParamToken),
		TemporaryPassword: env.Param(ParamTemporaryPassword),
		Message:           env.Param(ParamMessage),
	}

	var sb bytes.Buffer
	if err := r.subjects[env.Kind].Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject %s: %w", env.Kind, err)
	}
	var hb bytes.Buffer
	if err := page.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render body %s: %w", env.Kind, err)
	}
	return sb.String(), hb.String(), nil
}
