package assets

import _ "embed"

// ModelsData holds the raw JSON catalog of providers and their models.
//
//go:embed models.json
var ModelsData []byte
