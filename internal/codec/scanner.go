package codec

import (
	"strings"

	"github.com/shopspring/decimal"
)

// cursor is a position-indexed reader over document text. All structural
// characters are ASCII, so scanning bytes is safe for UTF-8 names.
type cursor struct {
	text string
	pos  int
}

func (c *cursor) done() bool { return c.pos >= len(c.text) }

func (c *cursor) peek() (byte, bool) {
	if c.done() {
		return 0, false
	}
	return c.text[c.pos], true
}

func (c *cursor) next() (byte, bool) {
	ch, ok := c.peek()
	if ok {
		c.pos++
	}
	return ch, ok
}

// skip advances past any bytes contained in set.
func (c *cursor) skip(set string) {
	for !c.done() && strings.IndexByte(set, c.text[c.pos]) >= 0 {
		c.pos++
	}
}

// quoted reads a quoted string starting at the opening quote. A backslash
// takes the following byte literally. It reports false if the cursor is not on
// a quote or the string is unterminated.
func (c *cursor) quoted() (string, bool) {
	if ch, ok := c.peek(); !ok || ch != '"' {
		return "", false
	}
	c.pos++
	var sb strings.Builder
	for {
		ch, ok := c.next()
		if !ok {
			return sb.String(), false
		}
		switch ch {
		case '\\':
			esc, ok := c.next()
			if !ok {
				return sb.String(), false
			}
			sb.WriteByte(esc)
		case '"':
			return sb.String(), true
		default:
			sb.WriteByte(ch)
		}
	}
}

// fragment is a region of the document that fields are looked up in.
type fragment string

// valueStart returns the index just past the first `"key":`.
func (f fragment) valueStart(key string) (int, bool) {
	needle := `"` + key + `":`
	i := strings.Index(string(f), needle)
	if i < 0 {
		return 0, false
	}
	return i + len(needle), true
}

func (f fragment) object(key string) (fragment, bool) { return f.balanced(key, '{', '}') }

func (f fragment) array(key string) (fragment, bool) { return f.balanced(key, '[', ']') }

// balanced returns the trimmed content between the opener that immediately
// follows key and its matching closer. Only open and close are counted.
func (f fragment) balanced(key string, open, close byte) (fragment, bool) {
	start, ok := f.valueStart(key)
	if !ok {
		return "", false
	}
	c := cursor{text: string(f), pos: start}
	if ch, ok := c.next(); !ok || ch != open {
		return "", false
	}
	for depth := 1; depth > 0; {
		ch, ok := c.next()
		if !ok {
			return "", false
		}
		switch ch {
		case open:
			depth++
		case close:
			depth--
		}
	}
	return fragment(strings.TrimSpace(string(f[start+1 : c.pos-1]))), true
}

// str returns the raw text between `"key":"` and the next unescaped quote.
func (f fragment) str(key string) (string, bool) {
	needle := `"` + key + `":"`
	i := strings.Index(string(f), needle)
	if i < 0 {
		return "", false
	}
	c := cursor{text: string(f), pos: i + len(needle)}
	start := c.pos
	for {
		ch, ok := c.next()
		if !ok {
			return "", false
		}
		switch ch {
		case '\\':
			c.next()
		case '"':
			return string(f[start : c.pos-1]), true
		}
	}
}

// number scans the run of digits, '.' and '-' after key. Absent keys and
// unparsable runs read as zero.
func (f fragment) number(key string) decimal.Decimal {
	start, ok := f.valueStart(key)
	if !ok {
		return decimal.Zero
	}
	c := cursor{text: string(f), pos: start}
	c.skip("0123456789.-")
	d, err := decimal.NewFromString(string(f[start:c.pos]))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// elements splits array content at every `},{` boundary, keeping the braces
// with their elements. Nested objects are not recognized.
func (f fragment) elements() []fragment {
	const boundary = "},{"
	var out []fragment
	rest := string(f)
	for {
		i := strings.Index(rest, boundary)
		if i < 0 {
			break
		}
		out = append(out, fragment(rest[:i+1]))
		rest = rest[i+2:]
	}
	if strings.TrimSpace(rest) != "" {
		out = append(out, fragment(rest))
	}
	return out
}
