package stage

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
)

// Schema returns the JSON schema of stage documents, for editors that
// validate YAML against JSON schema.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{RequiredFromJSONSchemaTags: true, DoNotReference: true}
	s := r.ReflectFromType(reflect.TypeOf(Document{}))
	s.Title = "Stage"
	s.Description = "Stage document: agents, their start positions and stats."
	return s
}

// BrainSchema returns the JSON schema of brain tables.
func BrainSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{RequiredFromJSONSchemaTags: true, DoNotReference: true}
	s := r.ReflectFromType(reflect.TypeOf(agents.TableDoc{}))
	s.Title = "Brains"
	s.Description = "Per-kind utility brains: picker, drives and prioritised choices."
	return s
}
