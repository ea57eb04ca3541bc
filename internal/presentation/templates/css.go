// Package templates provides the server-rendered pages of the site
package templates

import (
	"html/template"
	"strconv"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
)

// Stylesheet is inlined into every page; the site ships no static assets.
const Stylesheet = template.CSS(`
:root{--primary:#2563eb;--accent:#f97316;--highlight:#10b981;--ink:#1f2937;--muted:#6b7280;--line:#e5e7eb}
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,-apple-system,sans-serif;color:var(--ink);background:#f9fafb;line-height:1.5}
header{background:#fff;border-bottom:1px solid var(--line)}
nav{max-width:64rem;margin:0 auto;padding:.75rem 1rem;display:flex;gap:1rem;flex-wrap:wrap;align-items:center}
nav a{color:var(--muted);text-decoration:none}
nav a.active{color:var(--primary);font-weight:600}
nav .brand{font-weight:700;color:var(--ink);margin-right:auto}
main{max-width:64rem;margin:0 auto;padding:1.5rem 1rem}
footer{text-align:center;color:var(--muted);font-size:.875rem;padding:2rem 1rem}
.grid{display:grid;gap:1rem;grid-template-columns:repeat(auto-fill,minmax(18rem,1fr))}
.card{background:#fff;border:1px solid var(--line);border-radius:.75rem;padding:1rem}
.bar{height:.5rem;background:var(--line);border-radius:999px;overflow:hidden}
.bar span{display:block;height:100%}
.color-primary .bar span{background:var(--primary)}
.color-accent .bar span{background:var(--accent)}
.color-highlight .bar span{background:var(--highlight)}
.step{border-top:1px solid var(--line);padding:.75rem 0}
.step.done h4{text-decoration:line-through;color:var(--muted)}
.flash{padding:.75rem 1rem;border-radius:.5rem;margin-bottom:1rem;background:#ecfdf5}
.flash.error{background:#fef2f2}
button{cursor:pointer;border:1px solid var(--line);background:#fff;border-radius:.5rem;padding:.25rem .75rem}
label{display:block;margin-top:.75rem}
input,textarea{width:100%;padding:.5rem;border:1px solid var(--line);border-radius:.5rem}
`)

// ColorClass maps a roadmap color to its CSS class, defaulting to primary.
func ColorClass(color content.RoadmapColor) string {
	switch color {
	case content.ColorAccent, content.ColorHighlight, content.ColorPrimary:
		return "color-" + string(color)
	default:
		return "color-primary"
	}
}

// BarStyle returns the inline width of a progress bar fill.
func BarStyle(percentage int) template.CSS {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	return template.CSS("width:" + strconv.Itoa(percentage) + "%")
}
