// Package reqschema validates JSON request bodies against JSON Schema documents
// before they are decoded into Go values.
package reqschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

const maxBodyBytes = 1 << 20

type Schema struct {
	name   string
	schema *jsonschema.Schema
}

func Compile(name, src string) (*Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	schemaURL := fmt.Sprintf("https://inspectguild.local/schemas/%s.schema.json", name)
	if err := c.AddResource(schemaURL, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

// MustCompile is Compile for package-level schema literals.
func MustCompile(name, src string) *Schema {
	s, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode reads a JSON document from r, validates it and unmarshals it into dst.
// Malformed or non-conforming bodies yield an InvalidArgument *cerr.Error whose
// details list each violation.
func (s *Schema) Decode(r io.Reader, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "failed to read request body", err)
	}
	if len(body) > maxBodyBytes {
		return cerr.NewError(cerr.InvalidArgument, "request body too large", nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "request body is not valid JSON", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return s.violations(err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "request body does not match "+s.name, err)
	}
	return nil
}

func (s *Schema) violations(err error) error {
	out := cerr.NewError(cerr.InvalidArgument, "invalid "+s.name+" request", err)
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		out.AddDetailMessage(err.Error())
		return out
	}
	leaves := collectLeaves(ve, nil)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].InstanceLocation < leaves[j].InstanceLocation
	})
	for _, leaf := range leaves {
		field := strings.TrimPrefix(leaf.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		out.AddDetailMessageWithCode(leaf.Message, strings.ReplaceAll(field, "/", "."))
	}
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return append(acc, ve)
	}
	for _, c := range ve.Causes {
		acc = collectLeaves(c, acc)
	}
	return acc
}
