package tools

import (
	"sort"

	"bme-workers/internal/common/validation"

	"google.golang.org/genai"
)

// Declarations renders the catalog as Gemini function declarations.
func Declarations() []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(Catalog))
	for _, t := range Catalog {
		out = append(out, &genai.FunctionDeclaration{
			Name:        string(t.Intent),
			Description: t.Description,
			Parameters:  objectSchema(t.Parameters.Properties, t.Parameters.Required),
		})
	}
	return out
}

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
}

func objectSchema(props map[string]validation.Property, required []string) *genai.Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(props)),
		Required:   required,
	}
	names := make([]string, 0, len(props))
	for name, p := range props {
		s.Properties[name] = propertySchema(p)
		names = append(names, name)
	}
	sort.Strings(names)
	s.PropertyOrdering = names
	return s
}

func propertySchema(p validation.Property) *genai.Schema {
	if p.Type == "object" {
		s := objectSchema(p.Properties, p.Required)
		s.Description = p.Description
		return s
	}
	s := &genai.Schema{
		Type:        schemaTypes[p.Type],
		Description: p.Description,
		Enum:        p.Enum,
		Minimum:     p.Minimum,
	}
	if p.Items != nil {
		s.Items = propertySchema(*p.Items)
	}
	return s
}
