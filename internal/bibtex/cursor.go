package bibtex

// cursor walks an immutable byte buffer. Control bytes are ASCII, so a
// position that stops on one never splits a multi-byte UTF-8 sequence.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.data)
}

// peek returns the byte under the cursor without moving it.
func (c *cursor) peek() (byte, bool) {
	if c.eof() {
		return 0, false
	}
	return c.data[c.pos], true
}

func (c *cursor) advance() {
	if !c.eof() {
		c.pos++
	}
}

// next returns the byte under the cursor and moves past it.
func (c *cursor) next() (byte, bool) {
	b, ok := c.peek()
	if ok {
		c.pos++
	}
	return b, ok
}

func (c *cursor) mark() int { return c.pos }

func (c *cursor) reset(pos int) { c.pos = pos }

func (c *cursor) slice(from, to int) string {
	return string(c.data[from:to])
}

func (c *cursor) skipWhitespace() {
	for !c.eof() && isSpace(c.data[c.pos]) {
		c.pos++
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
