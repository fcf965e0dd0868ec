// Package extractors turns source files into plain text.
//
// Each subpackage handles one family of formats and declares the lowercase
// extensions it accepts. The Registry dispatches on a file's extension;
// files with unregistered extensions are not extracted at all.
//
// # Available Extractors
//
//   - plaintext: .txt, .text, .log, .json, .yaml, .yml, .toml, .xml
//   - markdown: .md, .markdown (goldmark AST text walk)
//   - html: .html, .htm (goquery)
//   - docx: .docx (word/document.xml)
//   - pdf: .pdf (ledongthuc/pdf)
//   - csv: .csv (one "header: value" line per cell)
package extractors
