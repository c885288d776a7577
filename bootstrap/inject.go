package bootstrap

import (
	"context"
	"html/template"
	"io"
)

// ScriptInjector places the widget loader into the host page
type ScriptInjector interface {
	Inject(ctx context.Context, w Widget) error
}

// GlobalName is the window property the widget queues commands on
const GlobalName = "ib"

var loaderTemplate = template.Must(template.New("loader").Parse(`<script>
(function (w, o) {
  w[o] = w[o] || function () { (w[o].q = w[o].q || []).push(arguments); };
{{- range .Commands}}
  w[o]({{.Name}}, {{.Arg}});
{{- end}}
})(window, {{.Global}});
</script>
<script id="{{.Global}}" src="{{.ScriptURL}}" async></script>
`))

// HTMLInjector renders the loader snippet to Out. Commands are queued before the script
// tag so they run as soon as the widget script loads.
type HTMLInjector struct {
	Out io.Writer
}

func (h HTMLInjector) Inject(_ context.Context, w Widget) error {
	return loaderTemplate.Execute(h.Out, struct {
		Global    string
		ScriptURL string
		Commands  []Command
	}{
		Global:    GlobalName,
		ScriptURL: w.ScriptURL(),
		Commands:  w.Commands(),
	})
}
