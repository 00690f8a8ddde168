package memory

import "errors"

var (
	errDuplicateBook     = errors.New("memory: book already exists")
	errDuplicateCheckout = errors.New("memory: checkout already exists")
)
