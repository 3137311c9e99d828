// Package richtext renders the markdown-lite subset supported by the
// in-app editor (bold, italic, links, images, newlines) to HTML.
//
// The renderer is an ordered pipeline of substitution stages. The input
// is HTML-escaped first, then bold and italic run, then markdown links,
// then bare-URL autolinking, then images, then newlines, so markup
// inserted by an earlier stage is never re-matched by a later pattern and
// no HTML from the stored text survives unescaped. Render never returns
// an error; any failure degrades to escaped newline-only conversion.
package richtext
