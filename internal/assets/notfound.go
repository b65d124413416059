package assets

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const errorPageCSS = `
body { font-family: Arial, sans-serif; text-align: center; padding: 50px; background: #f5f5f5; }
.error { background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); display: inline-block; }
h1 { color: #ff1744; }
a { color: #0066cc; text-decoration: none; }
a:hover { text-decoration: underline; }
`

func notFoundPage(requested string) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		h.HTML(
			h.Lang("fr"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text("404 - Page non trouvée")),
				h.StyleEl(g.Raw(errorPageCSS)),
			),
			h.Body(
				h.Div(
					h.Class("error"),
					h.H1(g.Text("404 - Page non trouvée")),
					h.P(g.Text("Le fichier "), h.Strong(g.Text(requested)), g.Text(" n'existe pas.")),
					h.P(h.A(h.Href("/"), g.Text("← Retour à l'accueil"))),
				),
			),
		),
	})
}
