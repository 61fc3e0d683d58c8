package lib

// Page slices a stable listing into a single page. It returns the entries
// starting at offset, capped at size, and whether more entries remain past
// the end of the page.
func Page[T any](listing []T, offset, size int) ([]T, bool) {
	if size <= 0 || offset < 0 || offset >= len(listing) {
		return nil, false
	}
	end := offset + size
	if end > len(listing) {
		end = len(listing)
	}
	return listing[offset:end], end < len(listing)
}
