// Package ui embeds the HTML templates served by the web service.
package ui

import "embed"

// Templates holds base.gohtml and one directory per page under pages/.
//
//go:embed templates
var Templates embed.FS
