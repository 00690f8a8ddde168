package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Command names a Core operation that takes a raw request.
type Command string

const (
	CommandAddBook      Command = "addBook"
	CommandFindBooks    Command = "findBooks"
	CommandCheckoutBook Command = "checkoutBook"
	CommandReturnBook   Command = "returnBook"
)

// GutenbergYear is the earliest accepted publication year.
const GutenbergYear = 1448

const (
	msgISBN             = `isbn must be of the form "ddd-ddd-ddd-d"`
	msgNonEmpty         = "must be non-empty"
	msgOneOrMoreAuthors = "must have one or more authors"
	msgSearchWord       = "search must contain a word of two or more characters"
)

var (
	isbnPattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{3}-\d$`)
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// CurrentYear returns the latest accepted publication year. Tests may replace it.
var CurrentYear = func() int { return time.Now().Year() }

type validatorFunc func(raw map[string]any) (any, error)

var validators = map[Command]validatorFunc{
	CommandAddBook:      func(raw map[string]any) (any, error) { return ValidateBook(raw) },
	CommandFindBooks:    func(raw map[string]any) (any, error) { return ValidateFind(raw) },
	CommandCheckoutBook: func(raw map[string]any) (any, error) { return ValidateLend(raw) },
	CommandReturnBook:   func(raw map[string]any) (any, error) { return ValidateLend(raw) },
}

// Validate checks raw against the schema of cmd and returns the typed record
// (Book, FindRequest or Lend). Field failures are returned together as Errors.
// An unknown command yields a single CONFIG error.
func Validate(cmd Command, raw map[string]any) (any, error) {
	v, ok := validators[cmd]
	if !ok {
		return nil, NewError(CodeConfig, "", fmt.Sprintf("no validator for command %s", cmd))
	}
	return v(raw)
}

// ValidateAs is Validate narrowed to the record type of cmd.
func ValidateAs[T any](cmd Command, raw map[string]any) (T, error) {
	var zero T
	v, err := Validate(cmd, raw)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, NewError(CodeConfig, "", fmt.Sprintf("command %s does not produce %T", cmd, zero))
	}
	return typed, nil
}

// ValidateBook validates an addBook request. NCopies defaults to 1.
func ValidateBook(raw map[string]any) (Book, error) {
	if raw == nil {
		return Book{}, Errors{NewError(CodeBadReq, "", "request must be an object")}
	}
	f := &fieldSet{raw: raw}
	b := Book{
		ISBN:      f.isbn("isbn"),
		Title:     f.nonBlank("title"),
		Authors:   f.authors("authors"),
		Publisher: f.nonBlank("publisher"),
		NCopies:   1,
	}
	if n, ok := f.integer("pages", true); ok {
		if n <= 0 {
			f.fail(CodeBadType, "pages", "pages must be a positive integer")
		}
		b.Pages = n
	}
	if y, ok := f.integer("year", true); ok {
		if y < GutenbergYear || y > CurrentYear() {
			f.fail(CodeBadType, "year", fmt.Sprintf("must be a past year on or after %d", GutenbergYear))
		}
		b.Year = y
	}
	if n, ok := f.integer("nCopies", false); ok {
		if n <= 0 {
			f.fail(CodeBadType, "nCopies", "nCopies must be a positive integer")
		}
		b.NCopies = n
	}
	if err := f.err(); err != nil {
		return Book{}, err
	}
	return b, nil
}

// ValidateFind validates a findBooks request.
func ValidateFind(raw map[string]any) (FindRequest, error) {
	if raw == nil {
		return FindRequest{}, Errors{NewError(CodeBadReq, "", "request must be an object")}
	}
	f := &fieldSet{raw: raw}
	var req FindRequest
	if s, ok := f.str("search"); ok {
		if !wordPattern.MatchString(s) {
			f.fail(CodeBadType, "search", msgSearchWord)
		}
		req.Search = s
	}
	if n, ok := f.integer("index", false); ok {
		if n < 0 {
			f.fail(CodeBadType, "index", "index must be a non-negative integer")
		}
		req.Index = n
	}
	if n, ok := f.integer("count", false); ok {
		if n < 0 {
			f.fail(CodeBadType, "count", "count must be a non-negative integer")
		}
		req.Count = &n
	}
	if err := f.err(); err != nil {
		return FindRequest{}, err
	}
	return req, nil
}

// ValidateLend validates a checkoutBook or returnBook request.
func ValidateLend(raw map[string]any) (Lend, error) {
	if raw == nil {
		return Lend{}, Errors{NewError(CodeBadReq, "", "request must be an object")}
	}
	f := &fieldSet{raw: raw}
	l := Lend{
		ISBN:     f.isbn("isbn"),
		PatronID: f.nonBlank("patronId"),
	}
	if err := f.err(); err != nil {
		return Lend{}, err
	}
	return l, nil
}

// ValidateISBN checks a bare isbn, as taken from a URL path.
func ValidateISBN(isbn string) error {
	f := &fieldSet{raw: map[string]any{"isbn": isbn}}
	f.isbn("isbn")
	return f.err()
}

// fieldSet reads fields out of a raw request, collecting every failure.
type fieldSet struct {
	raw  map[string]any
	errs Errors
}

func (f *fieldSet) fail(code Code, path, msg string) {
	f.errs = append(f.errs, NewError(code, path, msg))
}

func (f *fieldSet) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

// lookup reports a MISSING error for absent required fields.
func (f *fieldSet) lookup(name string, required bool) (any, bool) {
	v, ok := f.raw[name]
	if !ok {
		if required {
			f.fail(CodeMissing, name, name+" is required")
		}
		return nil, false
	}
	return v, true
}

func (f *fieldSet) str(name string) (string, bool) {
	v, ok := f.lookup(name, true)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		f.fail(CodeBadType, name, name+" must have type string")
		return "", false
	}
	return s, true
}

func (f *fieldSet) nonBlank(name string) string {
	s, ok := f.str(name)
	if !ok {
		return ""
	}
	if strings.TrimSpace(s) == "" {
		f.fail(CodeBadType, name, msgNonEmpty)
		return ""
	}
	return s
}

func (f *fieldSet) isbn(name string) string {
	s, ok := f.str(name)
	if !ok {
		return ""
	}
	if len(s) != 13 || !isbnPattern.MatchString(s) {
		f.fail(CodeBadType, name, msgISBN)
		return ""
	}
	return s
}

func (f *fieldSet) authors(name string) []string {
	v, ok := f.lookup(name, true)
	if !ok {
		return nil
	}
	var items []any
	switch vs := v.(type) {
	case []string:
		for _, s := range vs {
			items = append(items, s)
		}
	case []any:
		items = vs
	default:
		f.fail(CodeBadType, name, name+" must have type array")
		return nil
	}
	if len(items) == 0 {
		f.fail(CodeBadType, name, msgOneOrMoreAuthors)
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		path := name + "." + strconv.Itoa(i)
		s, ok := item.(string)
		if !ok {
			f.fail(CodeBadType, path, path+" must have type string")
			continue
		}
		if strings.TrimSpace(s) == "" {
			f.fail(CodeBadType, path, msgNonEmpty)
			continue
		}
		out = append(out, s)
	}
	return out
}

// integer accepts any integral numeric value. Strings are rejected even when
// they hold digits.
func (f *fieldSet) integer(name string, required bool) (int, bool) {
	v, ok := f.lookup(name, required)
	if !ok {
		return 0, false
	}
	n, isNumber, integral := toInt(v)
	switch {
	case !isNumber:
		f.fail(CodeBadType, name, name+" must have type number")
		return 0, false
	case !integral:
		f.fail(CodeBadType, name, name+" must be an integer")
		return 0, false
	}
	return n, true
}

func toInt(v any) (n int, isNumber, integral bool) {
	switch x := v.(type) {
	case int:
		return x, true, true
	case int8:
		return int(x), true, true
	case int16:
		return int(x), true, true
	case int32:
		return int(x), true, true
	case int64:
		return int(x), true, true
	case uint:
		return int(x), true, x <= math.MaxInt
	case uint8:
		return int(x), true, true
	case uint16:
		return int(x), true, true
	case uint32:
		return int(x), true, true
	case uint64:
		return int(x), true, x <= math.MaxInt
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), true, true
		}
		fl, err := x.Float64()
		if err != nil {
			return 0, false, false
		}
		return floatToInt(fl)
	default:
		return 0, false, false
	}
}

func floatToInt(x float64) (int, bool, bool) {
	// float64(math.MaxInt64) rounds up to 2^63, which int cannot hold.
	if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) ||
		x >= math.MaxInt64 || x < math.MinInt64 {
		return 0, true, false
	}
	return int(x), true, true
}
