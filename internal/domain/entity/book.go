package entity

import "slices"

// Book is a catalog title. ISBN is its identity; NCopies is the number of
// physical copies the library owns.
type Book struct {
	ISBN      string   `json:"isbn" yaml:"isbn"`
	Title     string   `json:"title" yaml:"title"`
	Authors   []string `json:"authors" yaml:"authors"`
	Pages     int      `json:"pages" yaml:"pages"`
	Year      int      `json:"year" yaml:"year"`
	Publisher string   `json:"publisher" yaml:"publisher"`
	NCopies   int      `json:"nCopies" yaml:"nCopies"`
}

// SameEdition reports whether b and other describe the same title.
// NCopies is ignored; authors are compared in order.
func (b *Book) SameEdition(other *Book) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.ISBN == other.ISBN &&
		b.Title == other.Title &&
		slices.Equal(b.Authors, other.Authors) &&
		b.Pages == other.Pages &&
		b.Year == other.Year &&
		b.Publisher == other.Publisher
}

// Clone returns a deep copy so callers cannot alias stored authors.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.Authors = slices.Clone(b.Authors)
	return &c
}

// Lend identifies a checkout or return: one patron and one title.
type Lend struct {
	ISBN     string `json:"isbn"`
	PatronID string `json:"patronId"`
}

// Checkout is a live loan of one copy of ISBN to PatronID.
type Checkout struct {
	ISBN     string `json:"isbn"`
	PatronID string `json:"patronId"`
}

// FindRequest is a validated catalog search.
// Count is nil when the caller wants every match after Index.
type FindRequest struct {
	Search string `json:"search"`
	Index  int    `json:"index"`
	Count  *int   `json:"count,omitempty"`
}

// Availability summarizes copies of a title.
type Availability struct {
	ISBN      string `json:"isbn"`
	NCopies   int    `json:"nCopies"`
	Out       int    `json:"checkedOut"`
	Available int    `json:"available"`
}
