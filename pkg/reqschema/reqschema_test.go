package reqschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

const testSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["name", "deadline"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"deadline": {"type": "string", "format": "date-time"},
		"rating": {"type": "number"}
	}
}`

type testBody struct {
	Name     string  `json:"name"`
	Deadline string  `json:"deadline"`
	Rating   float64 `json:"rating"`
}

func TestSchema_Decode(t *testing.T) {
	s := MustCompile("test", testSchema)

	var body testBody
	err := s.Decode(strings.NewReader(`{"name":"x","deadline":"2024-01-01T10:00:00Z","rating":4.5}`), &body)
	require.NoError(t, err)
	assert.Equal(t, testBody{Name: "x", Deadline: "2024-01-01T10:00:00Z", Rating: 4.5}, body)
}

func TestSchema_DecodeViolations(t *testing.T) {
	s := MustCompile("test", testSchema)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing required", body: `{"name":"x"}`},
		{name: "bad format", body: `{"name":"x","deadline":"tomorrow"}`},
		{name: "wrong type", body: `{"name":1,"deadline":"2024-01-01T10:00:00Z"}`},
		{name: "unknown field", body: `{"name":"x","deadline":"2024-01-01T10:00:00Z","extra":true}`},
		{name: "not json", body: `{"name":`},
		{name: "empty body", body: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body testBody
			err := s.Decode(strings.NewReader(tt.body), &body)
			require.Error(t, err)
			assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
		})
	}
}

func TestSchema_ViolationDetails(t *testing.T) {
	s := MustCompile("test", testSchema)

	var body testBody
	err := s.Decode(strings.NewReader(`{"name":"","deadline":"2024-01-01T10:00:00Z"}`), &body)
	require.Error(t, err)
	var ce *cerr.Error
	require.ErrorAs(t, err, &ce)
	msgs := ce.DetailMessages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "name: "), msgs[0])
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}
