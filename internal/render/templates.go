package render

import "html/template"

const stylesheet = `{{define "styles"}}{{if .Styles}}<style id="{{.StyleID}}">
.leadform-widget{--leadform-foreground:#0f172a;--leadform-muted:#f8fafc;--leadform-destructive:#ef4444;font-family:system-ui,sans-serif;line-height:1.5}
.leadform-widget[data-theme="dark"]{--leadform-foreground:#f8fafc;--leadform-muted:#1e293b}
@media (prefers-color-scheme: dark){.leadform-widget[data-theme="auto"]{--leadform-foreground:#f8fafc;--leadform-muted:#1e293b}}
.leadform-container{background:var(--leadform-muted);color:var(--leadform-foreground);max-width:420px;padding:24px;border-radius:12px}
.leadform-form{display:flex;flex-direction:column;gap:12px}
.leadform-field{display:flex;flex-direction:column;gap:4px}
.leadform-field.hidden{position:absolute;left:-10000px;opacity:0;pointer-events:none}
.leadform-checkbox-field{flex-direction:row;align-items:flex-start;gap:8px}
.leadform-submit{background:var(--leadform-primary);color:#fff;border:0;border-radius:6px;padding:10px 16px;cursor:pointer}
.leadform-error{color:var(--leadform-destructive);font-size:12px}
</style>{{end}}{{end}}`

const formMarkup = `<div class="leadform-widget" data-theme="{{.Theme}}" style="--leadform-primary: {{.Accent}}">
{{template "styles" .}}<div class="leadform-container {{.Position}}">
<div class="leadform-header">
<h3 class="leadform-title">{{.Title}}</h3>
<p class="leadform-subtitle">{{.Subtitle}}</p>
</div>
{{if .Notice}}<div class="leadform-error leadform-notice" role="alert">{{.Notice}}</div>
{{end}}<form class="leadform-form" method="post" action="{{.Action}}">
{{range $name, $value := .Hidden}}<input type="hidden" name="{{$name}}" value="{{$value}}">
{{end}}{{range .Fields}}<div class="leadform-field">
<label class="leadform-label" for="{{.ID}}">{{.Label}}{{if .Required}} *{{end}}</label>
{{if .Multiline}}<textarea class="leadform-input leadform-textarea" name="{{.Name}}" id="{{.ID}}" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}>{{.Value}}</textarea>
{{else}}<input class="leadform-input" type="{{.Type}}" name="{{.Name}}" id="{{.ID}}" placeholder="{{.Placeholder}}" value="{{.Value}}"{{if .Required}} required{{end}}>
{{end}}<div class="leadform-error" id="{{.ID}}-error">{{.Error}}</div>
</div>
{{end}}<div class="leadform-field hidden" aria-hidden="true">
<label class="leadform-label" for="leadform-{{.Honeypot}}">Website</label>
<input class="leadform-input" type="text" name="{{.Honeypot}}" id="leadform-{{.Honeypot}}" tabindex="-1" autocomplete="off">
</div>
{{with .Consent}}{{if .Show}}<div class="leadform-field leadform-checkbox-field">
<input type="checkbox" id="leadform-consent" name="consent" class="leadform-checkbox"{{if .Checked}} checked{{end}} required>
<label for="leadform-consent" class="leadform-checkbox-label">{{.Text}}</label>
<div class="leadform-error" id="leadform-consent-error">{{.Error}}</div>
</div>
{{end}}{{end}}{{with .Marketing}}{{if .Show}}<div class="leadform-field leadform-checkbox-field" id="leadform-marketing-consent-field">
<input type="checkbox" id="leadform-marketing-consent" name="marketingConsent" class="leadform-checkbox"{{if .Checked}} checked{{end}}>
<label for="leadform-marketing-consent" class="leadform-checkbox-label">{{.Text}}</label>
</div>
{{end}}{{end}}<button type="submit" class="leadform-submit"><span class="leadform-submit-text">{{.Button}}</span></button>
</form>
</div>
</div>
`

const successMarkup = `<div class="leadform-widget" data-theme="{{.Theme}}" style="--leadform-primary: {{.Accent}}">
{{template "styles" .}}<div class="leadform-container {{.Position}}">
<div class="leadform-success">
<h3 class="leadform-title">{{.SuccessHead}}</h3>
<p class="leadform-subtitle">{{.SuccessBody}}</p>
</div>
</div>
</div>
`

var (
	formTemplate    = template.Must(template.Must(template.New("form").Parse(stylesheet)).Parse(formMarkup))
	successTemplate = template.Must(template.Must(template.New("success").Parse(stylesheet)).Parse(successMarkup))
)
