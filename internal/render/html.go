package render

import (
	"bytes"
	"html/template"
	"io"

	"choromap/internal/scene"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.datamap path.datamaps-subunit:hover { cursor: pointer; }
.datamaps-legend dl { display: flex; flex-wrap: wrap; align-items: center; font: 12px Verdana, sans-serif; }
.datamaps-legend dt, .datamaps-legend dd { float: left; margin: 0 6px 0 0; }
.datamaps-legend dd { width: 20px; }
.datamaps-legend h2 { font: bold 14px Verdana, sans-serif; margin: 0 0 6px; }
</style>
</head>
<body>
<div class="datamaps-container" style="position: relative">
{{.SVG}}
</div>
{{.Legend}}
</body>
</html>
`))

// WriteHTML wraps the animated SVG and the legend fragment into a page.
// legend is trusted markup produced by the legend plugin.
func WriteHTML(w io.Writer, s *scene.Scene, title, legend string) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, SVGOptions{Animate: true, Titles: true}); err != nil {
		return err
	}
	body := buf.Bytes()
	// drop the XML prolog, it is not valid inside HTML
	if i := bytes.Index(body, []byte("<svg")); i > 0 {
		body = body[i:]
	}
	return page.Execute(w, struct {
		Title  string
		SVG    template.HTML
		Legend template.HTML
	}{title, template.HTML(body), template.HTML(legend)})
}
