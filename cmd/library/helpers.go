package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"lending-library/internal/domain/entity"
)

// codeBadArg marks a command-line argument that is not key=value.
const codeBadArg entity.Code = "BAD_ARG"

var (
	argPattern  = regexp.MustCompile(`^(\w+)=(.*)$`)
	digits      = regexp.MustCompile(`^\d+$`)
	listPattern = regexp.MustCompile(`^\[(.+)\]$`)
	listSep     = regexp.MustCompile(`\s*,\s*`)
)

// makeReq turns key=value arguments into a raw request. All-digit values
// become integers and [a, b] becomes a list of strings.
func makeReq(args []string) (map[string]any, error) {
	req := make(map[string]any, len(args))
	for _, arg := range args {
		m := argPattern.FindStringSubmatch(arg)
		if m == nil {
			return nil, entity.NewError(codeBadArg, "", fmt.Sprintf(`arg %s not of form "key=value"`, arg))
		}
		key, value := m[1], m[2]
		switch {
		case digits.MatchString(value):
			n, err := strconv.Atoi(value)
			if err != nil {
				// too large for int: let validation reject the string
				req[key] = value
				continue
			}
			req[key] = n
		case listPattern.MatchString(value):
			req[key] = listSep.Split(listPattern.FindStringSubmatch(value)[1], -1)
		default:
			req[key] = value
		}
	}
	return req, nil
}

// pathArgs returns the values of key=PATH arguments in argument order.
func pathArgs(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		m := argPattern.FindStringSubmatch(arg)
		if m == nil {
			return nil, entity.NewError(codeBadArg, "", fmt.Sprintf(`arg %s not of form "key=value"`, arg))
		}
		paths = append(paths, m[2])
	}
	return paths, nil
}

func (a *app) print(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(out))
	return err
}

// printErrors writes one line per structured error. Errors from cobra
// itself, such as an unknown flag, are reported as BAD_ARG.
func printErrors(w io.Writer, err error) {
	var (
		list entity.Errors
		one  *entity.Error
	)
	if !errors.As(err, &list) && !errors.As(err, &one) {
		err = entity.NewError(codeBadArg, "", err.Error())
	}
	for _, e := range entity.AsErrors(err) {
		line := fmt.Sprintf("%s: %s", e.Code, e.Message)
		if e.Path != "" {
			line += "; path=" + e.Path
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func configError(msg string) error {
	return entity.NewError(entity.CodeConfig, "", msg)
}

func dbError(err error) error {
	return entity.WrapDB(err)
}
