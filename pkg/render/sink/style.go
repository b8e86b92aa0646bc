package sink

// Themes selectable with WithTheme.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
)

const baseCSS = `
    .link { fill: none; stroke-width: 1.5px; }
    .node { cursor: pointer; }
    .node text { font-family: sans-serif; dominant-baseline: middle; }
    .node .body-text { font-size: 13px; }
    .node .title-text { font-size: 14px; font-weight: bold; }
    .node.loading { opacity: 0.6; }
    .node.childless { cursor: default; }`

var themes = map[string]string{
	ThemeDefault: `
    .link { stroke: #ccc; }
    .node circle { fill: #fff; stroke: steelblue; stroke-width: 1.5px; }
    .node.collapsed circle { fill: lightsteelblue; }
    .node.selected circle { stroke: #d62728; stroke-width: 3px; }
    .node text { fill: #222; }
    .node .body-box { fill: #fff; stroke: steelblue; stroke-width: 1.5px; rx: 4px; }
    .node.collapsed .body-box { fill: #eef3fa; }
    .node.selected .body-box { stroke: #d62728; stroke-width: 3px; }
    .node .title-box { fill: steelblue; rx: 4px; }
    .node .title-text { fill: #fff; }`,
	ThemeDark: `
    .link { stroke: #555; }
    .node circle { fill: #1e1e1e; stroke: #8ab4f8; stroke-width: 1.5px; }
    .node.collapsed circle { fill: #8ab4f8; }
    .node.selected circle { stroke: #f28b82; stroke-width: 3px; }
    .node text { fill: #e8eaed; }
    .node .body-box { fill: #202124; stroke: #8ab4f8; stroke-width: 1.5px; rx: 4px; }
    .node.collapsed .body-box { fill: #303134; }
    .node.selected .body-box { stroke: #f28b82; stroke-width: 3px; }
    .node .title-box { fill: #8ab4f8; rx: 4px; }
    .node .title-text { fill: #202124; }`,
}

// ThemeCSS returns the stylesheet for a theme, falling back to the default
// theme for unknown names.
func ThemeCSS(theme string) string {
	css, ok := themes[theme]
	if !ok {
		css = themes[ThemeDefault]
	}
	return baseCSS + css
}
