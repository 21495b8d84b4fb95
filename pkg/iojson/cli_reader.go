package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document of type T from the --file flag or
// from piped stdin. Unknown fields are rejected so typos in hand-written
// input files surface instead of being dropped.
type FileReader[T any] struct {
	fileFlagValue string

	// stdin overrides os.Stdin; set in tests.
	stdin io.Reader
}

func (fr *FileReader[T]) piped() (io.Reader, bool) {
	if fr.stdin != nil {
		return fr.stdin, true
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, false
	}
	return os.Stdin, true
}

// Provided reports whether input is available without prompting: either a
// file was named or stdin is not a terminal.
func (fr *FileReader[T]) Provided() bool {
	if fr.fileFlagValue != "" {
		return true
	}
	_, ok := fr.piped()
	return ok
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file, - for stdin (stdin is used when piped)",
		Destination: &fr.fileFlagValue,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	var r io.Reader
	switch fr.fileFlagValue {
	case "", "-":
		in, ok := fr.piped()
		if !ok {
			return input, errors.New("no input provided (stdin is a terminal); use -f or pipe JSON input")
		}
		r = in
	default:
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}
