package application

import "github.com/capeksafety/reviewkit/internal/domain/model"

// DiffText computes a single-span text diff by trimming the longest
// common prefix and suffix of the two strings. The result satisfies
// oldText == Prefix+Deleted+Suffix and newText == Prefix+Inserted+Suffix
// with each span reported exactly once. This is not a minimal diff and
// does not need to be; downstream highlighting only marks one deleted
// and one inserted span per field.
func DiffText(oldText, newText string) model.TextDiff {
	p := commonPrefixLen(oldText, newText)
	s := commonSuffixLen(oldText, newText, p)

	return model.TextDiff{
		Prefix:   oldText[:p],
		Deleted:  oldText[p : len(oldText)-s],
		Inserted: newText[p : len(newText)-s],
		Suffix:   oldText[len(oldText)-s:],
	}
}

// commonPrefixLen returns the byte length of the longest common prefix,
// backed off so it never splits a multi-byte rune on either side.
func commonPrefixLen(a, b string) int {
	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}
	for p > 0 && ((p < len(a) && isContinuation(a[p])) || (p < len(b) && isContinuation(b[p]))) {
		p--
	}
	return p
}

// commonSuffixLen returns the byte length of the longest common suffix of
// the regions after the shared prefix, with the same rune-boundary care.
func commonSuffixLen(a, b string, prefix int) int {
	s := 0
	for s < len(a)-prefix && s < len(b)-prefix && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}
	for s > 0 && (isContinuation(a[len(a)-s]) || isContinuation(b[len(b)-s])) {
		s--
	}
	return s
}

func isContinuation(c byte) bool { return c&0xC0 == 0x80 }
