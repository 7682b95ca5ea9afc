package server

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/isidrok/templao/internal/errors"
)

var titleCaser = cases.Title(language.English)

// handleIndex lists the registered templates.
func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	infos := s.registry.GetAll()
	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)

	var items strings.Builder
	for _, name := range names {
		info := infos[name]
		fmt.Fprintf(&items,
			`<li><a href="/preview/%s">%s</a> <small>%s · %d parts · keys: %s</small></li>`,
			html.EscapeString(name),
			html.EscapeString(titleCaser.String(name)),
			html.EscapeString(info.FilePath),
			info.PartCount,
			html.EscapeString(strings.Join(info.Keys, ", ")),
		)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPage, items.String())
}

// handlePreview renders one template with the current context values and
// keeps its instance warm for patch pushes.
func (s *PreviewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/preview/")
	if name == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	p, err := s.livePreview(r.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsNotFound(err) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	var sb strings.Builder
	if err := p.instance.Render(&sb); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fragment := sb.String()
	if s.sanitizer != nil {
		fragment = s.sanitizer.Sanitize(fragment)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, previewPage, html.EscapeString(titleCaser.String(name)), fragment)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>templao</title></head>
<body>
<h1>Templates</h1>
<ul>%s</ul>
<script>
new WebSocket("ws://" + location.host + "/ws").onmessage = function (e) {
  if (JSON.parse(e.data).type === "full_reload") location.reload();
};
</script>
</body>
</html>`

const previewPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s · templao</title></head>
<body>
%s
<script>
new WebSocket("ws://" + location.host + "/ws").onmessage = function (e) {
  var msg = JSON.parse(e.data);
  if (msg.type === "full_reload" || msg.type === "patch") location.reload();
};
</script>
</body>
</html>`
