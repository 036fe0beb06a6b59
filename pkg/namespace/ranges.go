package namespace

// ByteRange is a half-open byte interval [Off, End).
type ByteRange struct {
	Off uint64
	End uint64
}

// Len returns the range's length in bytes.
func (r ByteRange) Len() uint64 {
	if r.End <= r.Off {
		return 0
	}
	return r.End - r.Off
}

// Overlaps reports whether two ranges share at least one byte.
func (r ByteRange) Overlaps(s ByteRange) bool {
	return r.Off < s.End && s.Off < r.End
}

// RangeSet tracks which byte ranges of a file are locally hydrated.
//
// The set is kept sorted by offset with adjacent and overlapping spans
// coalesced, so membership checks walk at most a handful of spans even for
// files read in many small pieces.
//
// The zero value is an empty set.
type RangeSet struct {
	spans []ByteRange
}

// Insert adds a range to the set, merging it with any spans it touches.
// Zero-length ranges are ignored.
func (s *RangeSet) Insert(r ByteRange) {
	if r.Len() == 0 {
		return
	}

	out := s.spans[:0]
	merged := r
	inserted := false

	for _, span := range s.spans {
		switch {
		case span.End < merged.Off:
			out = append(out, span)
		case merged.End < span.Off:
			if !inserted {
				out = append(out, merged)
				inserted = true
			}
			out = append(out, span)
		default:
			// Touching or overlapping: absorb into the merged span.
			if span.Off < merged.Off {
				merged.Off = span.Off
			}
			if span.End > merged.End {
				merged.End = span.End
			}
		}
	}

	if !inserted {
		out = append(out, merged)
	}

	s.spans = out
}

// Covers reports whether every byte of r is in the set.
// The empty range is trivially covered.
func (s *RangeSet) Covers(r ByteRange) bool {
	if r.Len() == 0 {
		return true
	}

	for _, span := range s.spans {
		if span.Off > r.Off {
			return false
		}
		if span.End >= r.End {
			return r.Off >= span.Off
		}
		if span.End > r.Off {
			// Partial cover; the remainder must be in a later span, but
			// spans are coalesced so a gap follows.
			return false
		}
	}

	return false
}

// Gaps returns the sub-ranges of r not present in the set, in offset order.
func (s *RangeSet) Gaps(r ByteRange) []ByteRange {
	if r.Len() == 0 {
		return nil
	}

	var gaps []ByteRange
	cursor := r.Off

	for _, span := range s.spans {
		if span.End <= cursor {
			continue
		}
		if span.Off >= r.End {
			break
		}
		if span.Off > cursor {
			gaps = append(gaps, ByteRange{Off: cursor, End: span.Off})
		}
		cursor = span.End
		if cursor >= r.End {
			return gaps
		}
	}

	if cursor < r.End {
		gaps = append(gaps, ByteRange{Off: cursor, End: r.End})
	}

	return gaps
}

// IsEmpty reports whether the set contains no bytes.
func (s *RangeSet) IsEmpty() bool { return len(s.spans) == 0 }

// Spans returns a copy of the coalesced spans in offset order.
func (s *RangeSet) Spans() []ByteRange {
	return append([]ByteRange(nil), s.spans...)
}

// Clear empties the set.
func (s *RangeSet) Clear() { s.spans = nil }
