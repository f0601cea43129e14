package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadform-embed/internal/formconfig"
	"leadform-embed/internal/model"
)

func normalized(t *testing.T, partial model.FormConfig) model.FormConfig {
	t.Helper()
	partial.SiteSlug = "acme"
	partial.SitePublicKey = "pk"
	cfg, err := formconfig.Normalize(partial, model.SourceFloating)
	require.NoError(t, err)
	return cfg
}

func TestFormMarkup(t *testing.T) {
	cfg := normalized(t, model.FormConfig{
		Fields:         []model.FieldKind{model.FieldName, model.FieldEmail, "fax", model.FieldMessage},
		Title:          "Talk to <strong>sales</strong><script>alert(1)</script>",
		RequireConsent: true,
		Theme:          model.ThemeDark,
		AccentColor:    "#ff0066",
	})

	html, err := Form(View{
		Config: cfg,
		Action: "/submit",
		Hidden: map[string]string{"session": "abc"},
		Values: model.FormRecord{"name": "Ada <3"},
		Errors: map[string]string{"email": "This field is required"},
	}, NewDocument())
	require.NoError(t, err)

	assert.Contains(t, html, `data-theme="dark"`)
	assert.Contains(t, html, `id="leadform-widget-styles"`)
	assert.Contains(t, html, `<strong>sales</strong>`)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `<input type="hidden" name="session" value="abc">`)
	assert.Contains(t, html, `for="leadform-name">Name *</label>`)
	assert.Contains(t, html, `value="Ada &lt;3"`)
	assert.Contains(t, html, `type="email" name="email"`)
	assert.Contains(t, html, `<textarea class="leadform-input leadform-textarea" name="message"`)
	assert.NotContains(t, html, `name="fax"`)
	assert.Contains(t, html, "This field is required")
	assert.Contains(t, html, `name="website"`)
	assert.Contains(t, html, `name="consent"`)
	assert.NotContains(t, html, `name="marketingConsent"`)
	assert.Contains(t, html, "Contact us")

	assert.Less(t, strings.Index(html, `name="name"`), strings.Index(html, `name="email"`))
	assert.Less(t, strings.Index(html, `name="email"`), strings.Index(html, `name="message"`))
}

func TestMarketingConsentRenderedWhenRequired(t *testing.T) {
	cfg := normalized(t, model.FormConfig{
		Fields:                  []model.FieldKind{model.FieldName, model.FieldEmail},
		RequireMarketingConsent: true,
	})

	html, err := Form(View{Config: cfg}, NewDocument())
	require.NoError(t, err)
	assert.Contains(t, html, `name="marketingConsent" class="leadform-checkbox" checked>`, "offered on the first render")

	html, err = Form(View{Config: cfg, Values: model.FormRecord{"email": "bad"}}, NewDocument())
	require.NoError(t, err)
	assert.Contains(t, html, `name="marketingConsent" class="leadform-checkbox" checked>`)

	html, err = Form(View{Config: cfg, Values: model.FormRecord{"email": "ada@example.com", model.KeyMarketingConsent: ""}}, NewDocument())
	require.NoError(t, err)
	assert.Contains(t, html, `name="marketingConsent" class="leadform-checkbox">`)

	cfg.RequireMarketingConsent = false
	html, err = Form(View{Config: cfg}, NewDocument())
	require.NoError(t, err)
	assert.NotContains(t, html, `name="marketingConsent"`)
}

func TestStylesheetInjectedOncePerDocument(t *testing.T) {
	cfg := normalized(t, model.FormConfig{})
	doc := NewDocument()

	first, err := Form(View{Config: cfg}, doc)
	require.NoError(t, err)
	second, err := Success(cfg, doc)
	require.NoError(t, err)

	assert.Contains(t, first, StylesheetID)
	assert.NotContains(t, second, StylesheetID)
	assert.Contains(t, second, cfg.SuccessTitle)
}

func TestDocumentEnsureStylesheetConcurrent(t *testing.T) {
	doc := NewDocument()
	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doc.EnsureStylesheet(StylesheetID) {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, firsts)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Hello <em>there</em>", string(Sanitize(`Hello <em onclick="x()">there</em>`)))
	assert.Equal(t, "", string(Sanitize(`<script>alert(1)</script>`)))
}
