package main

import (
	"html/template"
	"io"
	"strings"
	"time"
)

type loginView struct {
	CallbackURL string
}

type resultView struct {
	UserID      string
	Token       string
	TokenType   string
	Expiry      string
	Permissions string
}

type errorView struct {
	Title       string
	Message     string
	Payload     string
	Description string
}

func newResultView(creds Credentials) resultView {
	v := resultView{
		UserID:      creds.UserID,
		Token:       creds.Token.AccessToken,
		TokenType:   creds.Token.TokenType,
		Permissions: strings.Join(creds.Permissions, ", "),
	}
	if !creds.Token.Expiry.IsZero() {
		v.Expiry = creds.Token.Expiry.UTC().Format(time.RFC1123)
	}
	return v
}

const pageStyle = `
<style>
body { font-family: -apple-system, system-ui, "Segoe UI", Roboto, sans-serif; background: #fafafa; padding: 2rem; }
.card { background: white; padding: 2rem; border-radius: 12px; border: 1px solid #dbdbdb; max-width: 800px; margin: 0 auto; }
.btn { background: #0095f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; font-weight: 600; display: inline-block; }
label { font-weight: bold; display: block; margin-bottom: 8px; }
input, textarea, pre { width: 100%; box-sizing: border-box; padding: 10px; border: 2px solid #ccc; border-radius: 4px; background: #fafafa; font-family: monospace; }
textarea { height: 100px; }
pre { white-space: pre-wrap; word-break: break-all; }
.field { margin-bottom: 24px; }
</style>`

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Instagram Business Login</title>` + pageStyle + `
</head>
<body>
<div class="card">
<h2>Instagram Business Login</h2>
<p>Authenticate to generate your Access Token.</p>
<a href="/login" class="btn">Log in with Instagram</a>
<p>Callback URL configured:<br><code>{{.CallbackURL}}</code></p>
</div>
</body>
</html>
`))

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Auth Success</title>` + pageStyle + `
</head>
<body>
<div class="card">
<h2>Authorization Successful</h2>
<div class="field">
<label>Instagram User ID:</label>
<input type="text" value="{{.UserID}}" readonly onclick="this.select()">
</div>
<div class="field">
<label>Long-Lived Access Token (60 Days):</label>
<textarea readonly onclick="this.select()">{{.Token}}</textarea>
{{if .Expiry}}<p>Expires: {{.Expiry}}</p>{{end}}
<p>Keep this safe!</p>
</div>
<div class="field">
<label>Permissions:</label>
<input type="text" value="{{.Permissions}}" readonly disabled>
</div>
</div>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>` + pageStyle + `
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .Payload}}<pre>{{.Payload}}</pre>{{end}}
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p><a href="/">Start over</a></p>
</div>
</body>
</html>
`))

func renderLogin(w io.Writer, v loginView) error {
	return loginPage.Execute(w, v)
}

func renderResult(w io.Writer, v resultView) error {
	return resultPage.Execute(w, v)
}

func renderError(w io.Writer, v errorView) error {
	return errorPage.Execute(w, v)
}
