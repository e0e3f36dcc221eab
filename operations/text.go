package operations

import "unicode/utf16"

// Text positions count UTF-16 code units, the unit Wave clients index by.

func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// spliceText replaces the code units [from, to) of s with insert. It fails
// when from or to falls between the halves of a surrogate pair.
func spliceText(s string, from, to int, insert string) (string, bool) {
	units := utf16.Encode([]rune(s))
	if !isRuneBoundary(units, from) || !isRuneBoundary(units, to) {
		return s, false
	}
	out := make([]uint16, 0, len(units)-(to-from)+len(insert))
	out = append(out, units[:from]...)
	out = append(out, utf16.Encode([]rune(insert))...)
	out = append(out, units[to:]...)
	return string(utf16.Decode(out)), true
}

func isRuneBoundary(units []uint16, at int) bool {
	if at <= 0 || at >= len(units) {
		return true
	}
	return !(0xd800 <= units[at-1] && units[at-1] < 0xdc00 && 0xdc00 <= units[at] && units[at] < 0xe000)
}
