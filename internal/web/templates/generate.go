// Package templates holds the templ views of the web UI. The *_templ.go files are generated
// from the .templ sources in layout, pages and components.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path .
