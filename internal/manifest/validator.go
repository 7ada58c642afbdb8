package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

const schemaURL = "manifest.schema.json"

var printer = message.NewPrinter(language.English)

// compiledSchema compiles the embedded schema on first use.
var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema JSON: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return s, nil
})

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Path    string // Instance location, e.g. "/backend/entryPoints/0"
	Message string
	Keyword string // Failing schema keyword, e.g. "pattern"
}

// SchemaError is returned by Load when a manifest does not match the schema.
type SchemaError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("manifest %s does not match the schema", e.Path)
	if len(e.Issues) == 0 {
		return msg
	}
	first := e.Issues[0]
	if first.Path != "" {
		msg += ": " + first.Path
	}
	msg += ": " + first.Message
	if n := len(e.Issues) - 1; n > 0 {
		msg += printer.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Validate checks JSON or YAML manifest bytes against the schema. Issues
// are reported in the result; the error is for unreadable input or a
// broken schema.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	inst, err := instance(data)
	if err != nil {
		return nil, err
	}

	var ve *jsonschema.ValidationError
	switch err := schema.Validate(inst); {
	case err == nil:
		return &ValidationResult{Valid: true}, nil
	case errors.As(err, &ve):
		return &ValidationResult{Issues: issues(ve)}, nil
	default:
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
}

// ValidateFile reads a file and validates it against the manifest schema.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// instance decodes data as YAML (a superset of JSON) and re-reads it as
// JSON so numbers reach the validator as json.Number.
func instance(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	buf, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(buf))
}

// issues flattens ve to its leaf violations. Combinator keywords only
// group their branches and are dropped, as are repeats from oneOf branches.
func issues(ve *jsonschema.ValidationError) []ValidationIssue {
	var out []ValidationIssue
	seen := map[ValidationIssue]bool{}

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		for _, c := range e.Causes {
			walk(c)
		}
		if len(e.Causes) > 0 || e.ErrorKind == nil {
			return
		}
		kw := e.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		issue := ValidationIssue{
			Message: e.ErrorKind.LocalizedString(printer),
			Keyword: kw[len(kw)-1],
		}
		switch issue.Keyword {
		case "oneOf", "anyOf", "allOf", "$ref":
			return
		}
		if len(e.InstanceLocation) > 0 {
			issue.Path = "/" + strings.Join(e.InstanceLocation, "/")
		}
		if !seen[issue] {
			seen[issue] = true
			out = append(out, issue)
		}
	}
	walk(ve)

	if len(out) == 0 {
		out = []ValidationIssue{{Message: ve.Error()}}
	}
	return out
}

// stringKeys converts YAML mappings with non-string keys into
// map[string]any so they can be marshaled as JSON.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = stringKeys(e)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i, e := range val {
			val[i] = stringKeys(e)
		}
		return val
	default:
		return v
	}
}
