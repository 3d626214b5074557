package schema

// ValidateSchema walks the schema and parses its scope configuration,
// reporting every dropped or invalid annotation without performing any
// consent action. This backs the validate command surface.
func ValidateSchema(schemaJSON []byte, keyword string, directMapping bool) ([]Warning, error) {
	walker := NewWalker(keyword, directMapping)
	pointers, warnings := walker.Walk(schemaJSON)

	parser, err := NewParser(keyword)
	if err != nil {
		return nil, err
	}
	_, parseWarnings := parser.Parse(schemaJSON, pointers)

	return append(warnings, parseWarnings...), nil
}
