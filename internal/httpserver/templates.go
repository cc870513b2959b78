// templates.go holds the HTML for the public index and the admin panel.
//
// The pages are deliberately plain, with no client-side assets, so the
// whole UI survives in two small templates compiled into the binary.
package httpserver

import (
	"html/template"
)

// pageTemplates defines both pages in one template set registered with
// gin via SetHTMLTemplate.
var pageTemplates = template.Must(template.New("").Parse(`
{{define "index.html"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Files}}<ul>
{{range .Files}}<li><a href="/download/{{.Name}}">{{.Name}}</a> ({{.HumanSize}})</li>
{{end}}</ul>
{{else}}<p>No files are currently available.</p>
{{end}}</body>
</html>{{end}}

{{define "admin.html"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>Admin</title></head>
<body>
<h1>Admin Panel</h1>
<form method="POST">
<table border="1">
<tr><th>File</th><th>Size</th><th>Published</th></tr>
{{range .Files}}<tr><td>{{.Name}}</td><td>{{.HumanSize}}</td><td><input type="checkbox" name="{{.Name}}"{{if .Published}} checked{{end}}></td></tr>
{{end}}</table>
<input type="submit" value="Update">
</form>
<br><a href="/">Back to file list</a>
</body>
</html>{{end}}
`))
