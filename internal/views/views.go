// Package views holds the templ components for pages and fragments.
// The *_templ.go files are generated with `templ generate`.
package views

import "strconv"

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func roundPath(viewID, action string) string {
	return "/round/" + viewID + "/" + action
}

func boardPath(viewID, action string) string {
	return "/round/" + viewID + "/board/" + action
}
