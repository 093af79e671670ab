package catalog

import (
	"github.com/invopop/jsonschema"

	"pocket-arena/server/internal/battle"
)

// FileDefinitions represents the contents of config/moves/definitions.json.
// The loader accepts either arrays or objects keyed by id; the schema models
// the canonical array format.
type FileDefinitions []battle.Definition

// Schema reflects the JSON schema of a move catalog file.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(FileDefinitions))
	schema.Title = "Pocket Arena Move Catalog"
	schema.Description = "Validates authored moves in config/moves/definitions.json"
	return schema
}
