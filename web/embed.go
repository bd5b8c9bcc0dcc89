package web

import "embed"

// Content holds the HTML templates of the web console
//
//go:embed *.html
var Content embed.FS
