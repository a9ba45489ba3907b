/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package schema

import (
	"fmt"

	"github.com/eino-contrib/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DataType is the JSON schema type of a node data field.
type DataType string

const (
	Object  DataType = "object"
	Number  DataType = "number"
	Integer DataType = "integer"
	String  DataType = "string"
	Array   DataType = "array"
	Null    DataType = "null"
	Boolean DataType = "boolean"
)

// DataSchema describes the shape of a node type's data payload as a JSON
// schema, ready to drive a property panel in the rendering layer.
func DataSchema(t NodeType) (*jsonschema.Schema, error) {
	switch t {
	case NodeTypeTextInput:
		sc := newObjectSchema()
		sc.Properties.Set("text", &jsonschema.Schema{
			Type:        string(String),
			Description: "literal text produced by this node",
		})
		sc.Required = []string{"text"}
		return sc, nil
	case NodeTypeLLMPrompt:
		sc := newObjectSchema()
		sc.Properties.Set("template", &jsonschema.Schema{
			Type:        string(String),
			Description: "prompt template referencing input slot names",
		})
		sc.Properties.Set("format", &jsonschema.Schema{
			Type: string(Integer),
			Enum: []any{int(FString), int(GoTemplate), int(Jinja2)},
		})
		sc.Properties.Set("model", modelParamsSchema())
		sc.Properties.Set("response", &jsonschema.Schema{
			Type:        string(String),
			Description: "last completion result, read-only",
		})
		sc.Required = []string{"template"}
		return sc, nil
	case NodeTypePlaceholder:
		return newObjectSchema(), nil
	default:
		return nil, fmt.Errorf("unknown node type: %s", t)
	}
}

func newObjectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       string(Object),
		Properties: orderedmap.New[string, *jsonschema.Schema](),
	}
}

func modelParamsSchema() *jsonschema.Schema {
	sc := newObjectSchema()
	sc.Properties.Set("model", &jsonschema.Schema{Type: string(String)})
	sc.Properties.Set("temperature", &jsonschema.Schema{Type: string(Number)})
	sc.Properties.Set("max_tokens", &jsonschema.Schema{Type: string(Integer)})
	sc.Properties.Set("top_p", &jsonschema.Schema{Type: string(Number)})
	sc.Properties.Set("stop", &jsonschema.Schema{
		Type:  string(Array),
		Items: &jsonschema.Schema{Type: string(String)},
	})
	return sc
}
