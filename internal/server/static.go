package server

import (
	"io/fs"
	"net/http"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var jsType = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(jsType, js.Minify)
	return m
}

// staticHandler serves the status page, minified on the way out.
func staticHandler(frontend fs.FS) http.Handler {
	return newMinifier().Middleware(http.FileServer(http.FS(frontend)))
}
