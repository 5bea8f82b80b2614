package iojson

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a stream of JSON values of type T from the file named by
// its --file flag, or from stdin when the flag is empty and stdin is piped.
type FileReader[T any] struct {
	fileFlagValue string

	// Stdin overrides os.Stdin, mainly for tests. A non-nil Stdin is
	// always treated as piped input.
	Stdin io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Piped reports whether input is available without a terminal prompt.
func (fr *FileReader[T]) Piped() bool {
	if fr.fileFlagValue != "" || fr.Stdin != nil {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// Read decodes every JSON value from the input. Values may be separated by
// newlines, as written by WriteLine.
func (fr *FileReader[T]) Read() ([]T, error) {
	var reader io.Reader

	switch {
	case fr.fileFlagValue != "":
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case fr.Stdin != nil:
		reader = fr.Stdin
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	var out []T
	err := ReadLines(reader, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
