package tokenizer

// isDigit returns true if c is an ASCII digit.
func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// IsHexDigit returns true if c is a hex digit, used by the parser's \uXXXX
// escape decoding.
func IsHexDigit(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isNewline returns true if c is a newline character. MOTLY documents are
// single-line-comment/whitespace/comma separated; \r\n is handled as a pair
// by the scanner's Get, not here.
func isNewline(c rune) bool {
	return c == '\n' || c == '\r'
}

// isWhitespace returns true if c is MOTLY whitespace (spaces, tabs, or
// newlines all skip identically between statements).
func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || isNewline(c)
}

// IsBareChar reports whether c is a valid bare-identifier character: ASCII
// alphanumeric, underscore, or Latin-1 Supplement / Latin Extended-A / Latin
// Extended Additional, per spec §4.1.1.
func IsBareChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		return true
	case c >= 0x00C0 && c <= 0x024F:
		return true
	case c >= 0x1E00 && c <= 0x1EFF:
		return true
	default:
		return false
	}
}
