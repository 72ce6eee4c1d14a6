package index

// Postings maps a document id to the term's frequency in that document.
type Postings map[int]float64

// Frequencies maps a term to its frequency in one document.
type Frequencies map[string]float64

// TermEntry is one row of the inverted index, used for snapshots.
type TermEntry struct {
	Term     string
	Postings Postings
}
