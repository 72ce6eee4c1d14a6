// Package paginator splits result slices into fixed-size pages for display.
package paginator

// Paginate returns consecutive pages of at most size items each. The last
// page holds the remainder. A non-positive size yields a single page.
// Pages share the backing array of items.
func Paginate[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	pages := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages
}
