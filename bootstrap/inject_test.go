package bootstrap

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLInjector(t *testing.T) {
	var out bytes.Buffer
	w := Widget{Config: Config{Instance: "acme", WidgetCode: "W1", Token: "aGVhZGVy.Y2xhaW1z.c2ln"}}

	require.NoError(t, HTMLInjector{Out: &out}.Inject(context.Background(), w))
	html := out.String()

	assert.Contains(t, html, `<script id="ib" src="https://acme.insideboard.com/insideboard.js?id=W1" async></script>`)
	assert.Contains(t, html, `w[o]("authenticate", "aGVhZGVy.Y2xhaW1z.c2ln");`)

	// Commands are queued in order: init, authenticate, setConfig
	initAt := strings.Index(html, `"init"`)
	authAt := strings.Index(html, `"authenticate"`)
	configAt := strings.Index(html, `"setConfig"`)
	assert.True(t, initAt >= 0 && initAt < authAt && authAt < configAt, html)
}

func TestHTMLInjectorEscapesValues(t *testing.T) {
	var out bytes.Buffer
	w := Widget{Config: Config{Instance: "acme", WidgetCode: "W1", Token: `</script><script>alert(1)</script>`}}

	require.NoError(t, HTMLInjector{Out: &out}.Inject(context.Background(), w))
	assert.NotContains(t, out.String(), "<script>alert(1)")
}
