// Package loader reads book files for bulk loading.
//
// A book file holds a list of book objects, as a JSON array or, for .yaml
// and .yml files, a YAML sequence. Records are returned raw so that the
// caller validates them exactly like a single addBook request.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"lending-library/internal/domain/entity"
)

// DefaultParallelism bounds concurrent file reads.
const DefaultParallelism = 8

// ReadBooks reads every path concurrently and returns the records in path
// order, then file order. The first unreadable or malformed file fails the
// whole call with a BAD_REQ error whose path is the file name.
func ReadBooks(ctx context.Context, paths ...string) ([]map[string]any, error) {
	perFile := make([][]map[string]any, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(DefaultParallelism)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			books, err := readFile(path)
			if err != nil {
				return err
			}
			perFile[i] = books
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []map[string]any
	for _, books := range perFile {
		out = append(out, books...)
	}
	return out, nil
}

func readFile(path string) ([]map[string]any, error) {
	// #nosec G304 -- paths are named by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, badFile(path, "cannot read file: %v", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(path, data)
	default:
		return DecodeJSON(path, data)
	}
}

// DecodeJSON parses a JSON array of book objects. Numbers are kept as
// json.Number so that integral checks see the literal value.
func DecodeJSON(name string, data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, badFile(name, "invalid JSON: %v", err)
	}
	return objects(name, items)
}

// DecodeYAML parses a YAML sequence of book mappings.
func DecodeYAML(name string, data []byte) ([]map[string]any, error) {
	var items []any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, badFile(name, "invalid YAML: %v", err)
	}
	return objects(name, items)
}

func objects(name string, items []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, badFile(name, "element %d is not an object", i)
		}
		out = append(out, m)
	}
	return out, nil
}

func badFile(name, format string, args ...any) error {
	return entity.Errors{entity.NewError(entity.CodeBadReq, name, fmt.Sprintf(format, args...))}
}
