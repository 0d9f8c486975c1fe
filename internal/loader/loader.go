// Package loader reads sprint and meeting documents and validates them.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/josephgoksu/SprintReview/models"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader reads input documents from a filesystem.
// Use afero.NewOsFs() for real files or afero.NewMemMapFs() in tests.
type Loader struct {
	fs afero.Fs
}

// New creates a Loader over fs.
func New(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// NewOs creates a Loader over the operating system filesystem.
func NewOs() *Loader {
	return New(afero.NewOsFs())
}

// LoadSprint reads and validates a sprint document.
func (l *Loader) LoadSprint(path string) (models.Sprint, error) {
	data, err := l.read(path)
	if err != nil {
		return models.Sprint{}, err
	}
	return ParseSprint(data)
}

// LoadMeeting reads and validates a meeting document.
func (l *Loader) LoadMeeting(path string) (models.Meeting, error) {
	data, err := l.read(path)
	if err != nil {
		return models.Meeting{}, err
	}
	return ParseMeeting(data)
}

// read returns the file contents as JSON, converting YAML files first.
func (l *Loader) read(path string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return data, nil
	}
}

// DecodeSprint reads a JSON sprint document from r.
func DecodeSprint(r io.Reader) (models.Sprint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Sprint{}, fmt.Errorf("read sprint: %w", err)
	}
	return ParseSprint(data)
}

// DecodeMeeting reads a JSON meeting document from r.
func DecodeMeeting(r io.Reader) (models.Meeting, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("read meeting: %w", err)
	}
	return ParseMeeting(data)
}

// ParseSprint decodes and validates a JSON sprint document.
func ParseSprint(data []byte) (models.Sprint, error) {
	var doc sprintDocument
	if err := decodeJSON(data, &doc); err != nil {
		return models.Sprint{}, err
	}
	if err := validateDocument(&doc); err != nil {
		return models.Sprint{}, err
	}
	return doc.model(), nil
}

// ParseMeeting decodes and validates a JSON meeting document.
func ParseMeeting(data []byte) (models.Meeting, error) {
	var doc meetingDocument
	if err := decodeJSON(data, &doc); err != nil {
		return models.Meeting{}, err
	}
	if err := validateDocument(&doc); err != nil {
		return models.Meeting{}, err
	}
	return doc.model(), nil
}

func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", wireType(typeErr.Type), wireValue(typeErr.Value)),
			}
		}
		return &ValidationError{Reason: fmt.Sprintf("malformed document: %v", err)}
	}
	return nil
}

// wireType names a Go decode target by its JSON kind.
func wireType(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func wireValue(v string) string {
	if v == "bool" {
		return "boolean"
	}
	return v
}

func validateDocument(doc interface{}) error {
	err := models.ValidateStruct(doc)
	if err == nil {
		return nil
	}
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		return &ValidationError{Field: fieldErr.Field, Reason: fieldErr.Reason(), Err: err}
	}
	return &ValidationError{Reason: err.Error(), Err: err}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed YAML document: %v", err)}
	}
	keepTimestampsAsText(&node)

	var doc interface{}
	if err := node.Decode(&doc); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed YAML document: %v", err)}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("YAML document is not JSON-compatible: %v", err)}
	}
	return out, nil
}

// keepTimestampsAsText retags unquoted dates so they decode as the string
// that was written rather than a time.Time.
func keepTimestampsAsText(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!timestamp" {
		node.Tag = "!!str"
	}
	for _, child := range node.Content {
		keepTimestampsAsText(child)
	}
}
