package mcpserver

// NoteFormatContract describes the note format Envy indexes. LLM consumers
// should follow it when writing notes.
const NoteFormatContract = `# Envy Note Format Contract

A note is a UTF-8 Markdown file ending in ` + "`.md`" + `. Notes are grouped by the
first directory under the vault root; files directly in the root belong to the
group ` + "`Root`" + `. Paper notes live in the papers directory.

## Paper note

` + "```" + `markdown
---
bibtex: "@article{zhai2018, title={Autoencoder and its various variants}, author={Zhai, Junhai and Zhang, Sufang}, year={2018}}"
pdf: ./doc/zhai2018.pdf
tags: [unread]
---
# Autoencoder and its various variants

Notes on the paper.
` + "```" + `

## Rules

1. The header is optional. When present, the very first line is exactly ` + "`---`" + `
   and the header ends at the next line that is exactly ` + "`---`" + `.
2. ` + "`bibtex`" + ` (required in a header) holds exactly one BibTeX record.
   The entry kind is lowercase: article, book, booklet, conference, inbook,
   incollection, inproceedings, manual, phdthesis, misc, proceedings,
   techreport, unpublished. The record must carry title, author and year.
3. ` + "`pdf`" + ` (required in a header) is relative to the note's own directory.
4. ` + "`tags`" + ` is an optional YAML list.
5. A note with a malformed header is not indexed until it is fixed.
6. Prefer the ` + "`create_paper_note`" + ` tool: it writes ` + "`<papers>/<key>.md`" + `
   from a single BibTeX record and refuses to overwrite an existing note.

## Search

Queries match the citation key, title and author by substring, the year
exactly, and the vault-relative path by substring. A query without uppercase
letters is case-insensitive.
`
