// Package schemas embeds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// CouncilSchemaJSON validates .council.yaml project configuration files.
//
//go:embed council.schema.json
var CouncilSchemaJSON string

// RankingSchemaJSON validates structured ranking payloads returned by
// evaluators when the structured contract is enabled.
//
//go:embed ranking.schema.json
var RankingSchemaJSON string
