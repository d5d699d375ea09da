package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "release-manifest.schema.json"

//go:embed schema/release-manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	errCompile     error
	printer        = message.NewPrinter(language.English)
)

// ErrInvalidShape is returned when a manifest parses but has unexpected member types.
var ErrInvalidShape = errors.New("manifest does not have the expected shape")

// Issue is a single shape violation.
type Issue struct {
	// Path is the JSON pointer of the offending value, e.g. "/branches/0/name".
	Path string
	// Message is the human-readable reason.
	Message string
}

// ShapeError lists every violation found in one document.
type ShapeError struct {
	Issues []Issue
}

// Error implements error.
func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "/"
		}

		parts = append(parts, path+": "+issue.Message)
	}

	return ErrInvalidShape.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidShape) work.
func (e *ShapeError) Unwrap() error {
	return ErrInvalidShape
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			errCompile = fmt.Errorf("unmarshal schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err = c.AddResource(schemaURL, doc); err != nil {
			errCompile = fmt.Errorf("add schema resource: %w", err)
			return
		}

		compiledSchema, errCompile = c.Compile(schemaURL)
		if errCompile != nil {
			errCompile = fmt.Errorf("compile schema: %w", errCompile)
		}
	})

	return compiledSchema, errCompile
}

// checkShape validates well-formed JSON data against the embedded schema.
func checkShape(data []byte) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("validate manifest: %w", err)
	}

	var issues []Issue

	collectIssues(validationErr, &issues)

	if len(issues) == 0 {
		issues = append(issues, Issue{Message: validationErr.Error()})
	}

	return &ShapeError{Issues: issues}
}

// collectIssues walks the error tree down to its leaves.
func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}

		return
	}

	var path string
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}

	msg := ve.Error()
	if ve.ErrorKind != nil {
		msg = ve.ErrorKind.LocalizedString(printer)
	}

	*issues = append(*issues, Issue{
		Path:    path,
		Message: msg,
	})
}
