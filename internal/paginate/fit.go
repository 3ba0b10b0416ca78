package paginate

// FitResult describes the largest prefix of a text run that fits the
// printable width.
type FitResult struct {
	Count int     // runes consumed from the front of the run
	Width float64 // measured width of that prefix, in points
}

// FitLine finds the longest prefix of text whose rendered width does not
// exceed max points. When the whole run fits it is taken with a single
// measurement. Otherwise the boundary is located by binary search over
// the prefix length. The result always covers at least one rune so that
// a single glyph wider than the printable area still advances the
// caller's cursor.
func FitLine(s Surface, text []rune, size float64, bold bool, max float64) FitResult {
	if len(text) == 0 {
		return FitResult{}
	}
	if w := s.Width(string(text), size, bold); w <= max {
		return FitResult{Count: len(text), Width: w}
	}
	lo, hi := 1, len(text)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.Width(string(text[:mid]), size, bold) <= max {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return FitResult{Count: lo, Width: s.Width(string(text[:lo]), size, bold)}
}
