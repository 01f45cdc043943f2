//go:build ruleguard
// +build ruleguard

package ruleguard

import (
	"github.com/quasilyte/go-ruleguard/dsl"
)

// Templates and JSON responses get the http package's own types so a change to
// reviewing.Review (like its unexported employee id) can't leak into them.
//
// Run with: ruleguard -rules ruleguard/rules-dont-pass-domain-objects-to-templates.go ./internal/reviewing/http/...
func domainObjectsInResponses(m dsl.Matcher) {
	m.Import("github.com/gaqzi/employee-reviews/internal/reviewing")

	m.Match(`map[string]any{$*_, $key: $val, $*_}`).
		Where(m["val"].Type.Is(`*reviewing.Review`) || m["val"].Type.Is(`reviewing.Review`)).
		Report(`passing reviewing.Review into a template's SetData map. Use: convertToHttpObject($val)`)

	m.Match(`map[string]any{$*_, $key: $val, $*_}`).
		Where(m["val"].Type.Is(`[]*reviewing.Review`)).
		Report(`passing []*reviewing.Review into a template's SetData map. Use: convertToHttpObjects($val)`)

	m.Match(`writeJSON($w, $status, $val)`).
		Where(m["val"].Type.Is(`*reviewing.Review`) || m["val"].Type.Is(`[]*reviewing.Review`)).
		Report(`writing reviewing.Review as JSON directly. Use: toJSON($val)`)
}
