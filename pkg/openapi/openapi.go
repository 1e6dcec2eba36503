// Package openapi validates serialized OpenAPI documents among a set of
// changed files.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/getkin/kin-openapi/openapi3"
)

// SpecFiles are the file names that hold an API definition. Anything else
// passed to Check is ignored.
var SpecFiles = []string{"openapi.yaml", "openapi.yml", "openapi.json"}

// Checker validates OpenAPI documents and reports schema errors as one
// diagnostic line each.
type Checker struct {
	Out    io.Writer // diagnostics; os.Stderr when nil
	Logger *log.Logger
}

// NewChecker creates a checker writing diagnostics to stderr.
func NewChecker(logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.Default()
	}
	return &Checker{Out: os.Stderr, Logger: logger}
}

// IsSpecFile reports whether the path names an API definition file.
func IsSpecFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range SpecFiles {
		if base == name {
			return true
		}
	}
	return false
}

// Check validates every API definition among files and returns the number of
// schema errors found. Validation stops at the first file with errors; a
// clean run returns zero.
func (c *Checker) Check(ctx context.Context, files []string) int {
	for _, file := range files {
		if !IsSpecFile(file) {
			continue
		}
		if n := c.checkFile(ctx, file); n > 0 {
			return n
		}
	}
	return 0
}

func (c *Checker) checkFile(ctx context.Context, file string) int {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(file)
	if err != nil {
		fmt.Fprintf(c.out(), "%s: %v\n", file, err)
		return 1
	}

	err = doc.Validate(ctx)
	if err == nil {
		c.Logger.Debug("document is valid", "file", file)
		return 0
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			fmt.Fprintf(c.out(), "%s: %v\n", file, e)
		}
		return len(multi)
	}
	fmt.Fprintf(c.out(), "%s: %v\n", file, err)
	return 1
}

func (c *Checker) out() io.Writer {
	if c.Out == nil {
		return os.Stderr
	}
	return c.Out
}
