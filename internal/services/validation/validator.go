package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Request body schema names, one per embedded schemas/<name>.json.
const (
	SchemaLogin            = "login"
	SchemaRegisterCompany  = "registerCompany"
	SchemaUserUpdate       = "userUpdate"
	SchemaUserRoles        = "userRoles"
	SchemaProjectCreate    = "projectCreate"
	SchemaProjectUpdate    = "projectUpdate"
	SchemaTaskCreate       = "taskCreate"
	SchemaTaskUpdate       = "taskUpdate"
	SchemaCommentCreate    = "commentCreate"
	SchemaCommentUpdate    = "commentUpdate"
	SchemaInvitationCreate = "invitationCreate"
	SchemaInvitationAccept = "invitationAccept"
)

// ErrMalformedBody is returned for bodies that are not a JSON document.
var ErrMalformedBody = errors.New("malformed request body")

// BodyField is the key used in FieldErrors for a violation of the document
// root, e.g. an array where an object was expected.
const BodyField = "body"

// notBlankPattern is the pattern the schemas use for required text.
const notBlankPattern = `\S`

// FieldErrors maps a dotted field path to a message describing what is wrong
// with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks request bodies against the embedded JSON schemas.
// Schemas are compiled once; a Validator is safe for concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
	printer *message.Printer
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	files, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", file, err)
		}
		if err := compiler.AddResource(path.Base(file), parsed); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", file, err)
		}
		names = append(names, strings.TrimSuffix(path.Base(file), ".json"))
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}

	return &Validator{
		schemas: schemas,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Validate checks body against the named schema. It returns ErrMalformedBody
// when body is not JSON and FieldErrors when it violates the schema.
func (v *Validator) Validate(name string, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validate %s: %w", name, err)
	}

	fields := FieldErrors{}
	v.collect(verr, fields)
	return fields
}

// Decode validates body against the named schema and unmarshals it into dst.
func (v *Validator) Decode(name string, body []byte, dst any) error {
	if err := v.Validate(name, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// collect flattens the leaves of the error tree into fields. The first
// message recorded for a field wins.
func (v *Validator) collect(verr *jsonschema.ValidationError, fields FieldErrors) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			v.collect(cause, fields)
		}
		return
	}

	if required, ok := verr.ErrorKind.(*kind.Required); ok {
		for _, missing := range required.Missing {
			addField(fields, fieldPath(append(slices.Clone(verr.InstanceLocation), missing)), "is required")
		}
		return
	}
	if pattern, ok := verr.ErrorKind.(*kind.Pattern); ok && pattern.Want == notBlankPattern {
		addField(fields, fieldPath(verr.InstanceLocation), "must not be blank")
		return
	}

	addField(fields, fieldPath(verr.InstanceLocation), verr.ErrorKind.LocalizedString(v.printer))
}

func addField(fields FieldErrors, field, msg string) {
	if _, exists := fields[field]; !exists {
		fields[field] = msg
	}
}

func fieldPath(location []string) string {
	if len(location) == 0 {
		return BodyField
	}
	return strings.Join(location, ".")
}
