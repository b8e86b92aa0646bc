// Package sink writes a retained [scene.Scene] to output formats.
//
// [RenderSVG] produces a standalone SVG document with one CSS class per
// node lifecycle state; given the last [diagram.Frame] it adds SMIL
// animations that replay the frame's transitions. [NewMessage] and
// [RenderJSON] produce the JSON wire format consumed by the browser client
// of `arbor serve`.
package sink
