// Package ui renders the browser upload page.
package ui

import (
	"net/http"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const pageCSS = `body{font-family:Helvetica,Arial,sans-serif;background:#f4f6f8;margin:0}
main{max-width:520px;margin:64px auto;background:#fff;padding:32px;border-radius:8px;box-shadow:0 1px 4px rgba(0,0,0,.1)}
h1{font-size:22px;margin-top:0}
form{display:flex;flex-direction:column;gap:16px}
button{background:#1f6feb;color:#fff;border:0;padding:10px 16px;border-radius:6px;font-size:15px;cursor:pointer}
.hint{color:#57606a;font-size:13px}`

// UploadPage returns the page with the .pbit upload form. The form posts to
// processPath and the browser saves the PDF from the attachment response.
func UploadPage(processPath string) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text("Power BI ERD Documentation")),
			StyleEl(Raw(pageCSS)),
		),
		Body(
			Main(
				H1(Text("Power BI ERD Documentation")),
				P(Class("hint"), Text("Upload a Power BI template (.pbit) to download its tables, measures and relationships as a PDF.")),
				Form(
					Method("post"),
					Action(processPath),
					EncType("multipart/form-data"),
					Label(For("file"), Text("Template file")),
					Input(Type("file"), ID("file"), Name("file"), Accept(".pbit"), Required()),
					Button(Type("submit"), Text("Generate PDF")),
				),
			),
		),
	))
}

// Handler serves the upload page.
func Handler(processPath string) http.HandlerFunc {
	page := UploadPage(processPath)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = page.Render(w)
	}
}
