package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"

	"github.com/project-kessel/spice/internal/traits"
)

// CollectPolicy reduces the values of a scope's pointers to one claim value.
type CollectPolicy string

const (
	// CollectFirst picks the first resolving value in declaration order
	CollectFirst CollectPolicy = "first"
	// CollectLast picks the last resolving value in declaration order
	CollectLast CollectPolicy = "last"
	// CollectAny is a documented alias for CollectFirst. It signals "some
	// value" intent without promising a particular one; evaluation stays
	// deterministic and ordered.
	CollectAny CollectPolicy = "any"
	// CollectAll collects every resolving value into a JSON array
	CollectAll CollectPolicy = "all"
)

// SessionData names the destination paths for a scope's resolved value
// within the ID token and access token claim sets. An empty field means
// the scope contributes nothing to that claim set.
type SessionData struct {
	IDToken     string
	AccessToken string
}

// ScopeConfig is the closed set of per-scope configuration variants.
// Every resolution site switches exhaustively over the two concrete
// types; adding a variant fails to compile until all sites handle it.
type ScopeConfig interface {
	// Kind returns the wire discriminator, value or composite
	Kind() string
	// SessionData returns the configured claim destinations
	SessionData() SessionData

	isScopeConfig()
}

// ValueScope collects pointer-resolved trait values under a collect policy.
type ValueScope struct {
	Collect CollectPolicy
	Session SessionData
}

func (*ValueScope) Kind() string { return "value" }

func (s *ValueScope) SessionData() SessionData { return s.Session }

func (*ValueScope) isScopeConfig() {}

// CompositeScope reshapes trait values through a declarative mapping tree.
type CompositeScope struct {
	Mapping MappingNode
	Session SessionData
}

func (*CompositeScope) Kind() string { return "composite" }

func (s *CompositeScope) SessionData() SessionData { return s.Session }

func (*CompositeScope) isScopeConfig() {}

// MappingNode is the closed set of composite mapping tree variants.
type MappingNode interface {
	isMappingNode()
}

// PathNode dereferences a trait pointer. An unresolvable pointer
// contributes JSON null so partially-populated structures still emit.
type PathNode struct {
	Pointer traits.Pointer
}

func (PathNode) isMappingNode() {}

// ObjectField is one named child of an ObjectNode.
type ObjectField struct {
	Name string
	Node MappingNode
}

// ObjectNode builds an object from named child mappings in declaration order.
type ObjectNode struct {
	Fields []ObjectField
}

func (ObjectNode) isMappingNode() {}

// TupleNode builds an array from positional child mappings.
type TupleNode struct {
	Items []MappingNode
}

func (TupleNode) isMappingNode() {}

// ScopeConfigs is the parsed scope configuration table. Iteration order
// is declaration order for explicit entries followed by discovery order
// for synthesized defaults.
type ScopeConfigs struct {
	order   []string
	configs map[string]ScopeConfig
}

func newScopeConfigs() *ScopeConfigs {
	return &ScopeConfigs{configs: make(map[string]ScopeConfig)}
}

func (c *ScopeConfigs) add(scope string, cfg ScopeConfig) {
	if _, ok := c.configs[scope]; !ok {
		c.order = append(c.order, scope)
	}
	c.configs[scope] = cfg
}

// Get returns the configuration for a scope.
func (c *ScopeConfigs) Get(scope string) (ScopeConfig, bool) {
	cfg, ok := c.configs[scope]
	return cfg, ok
}

// Scopes returns the configured scope names in order.
func (c *ScopeConfigs) Scopes() []string {
	return c.order
}

// Len returns the number of configured scopes.
func (c *ScopeConfigs) Len() int {
	return len(c.order)
}

// scopeConfigMetaSchema validates one entry of the scope-configuration
// block before it is decoded into the typed variants above.
const scopeConfigMetaSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"$id": "spice://consent-config",
	"$defs": {
		"sessionData": {
			"type": "object",
			"properties": {
				"idToken": {"type": "string", "minLength": 1},
				"accessToken": {"type": "string", "minLength": 1}
			},
			"anyOf": [
				{"required": ["idToken"]},
				{"required": ["accessToken"]}
			],
			"additionalProperties": false
		},
		"mapping": {
			"oneOf": [
				{
					"type": "object",
					"properties": {
						"type": {"const": "object"},
						"properties": {
							"type": "object",
							"additionalProperties": {"$ref": "#/$defs/mapping"}
						}
					},
					"required": ["type", "properties"],
					"additionalProperties": false
				},
				{
					"type": "object",
					"properties": {
						"type": {"const": "tuple"},
						"prefixItems": {
							"type": "array",
							"items": {"$ref": "#/$defs/mapping"}
						}
					},
					"required": ["type", "prefixItems"],
					"additionalProperties": false
				},
				{
					"type": "object",
					"properties": {
						"type": {"const": "path"},
						"$ref": {"type": "string", "minLength": 1}
					},
					"required": ["type", "$ref"],
					"additionalProperties": false
				}
			]
		}
	},
	"oneOf": [
		{
			"type": "object",
			"properties": {
				"type": {"const": "value"},
				"collect": {"enum": ["first", "last", "any", "all"]},
				"sessionData": {"$ref": "#/$defs/sessionData"}
			},
			"required": ["type", "sessionData"],
			"additionalProperties": false
		},
		{
			"type": "object",
			"properties": {
				"type": {"const": "composite"},
				"mapping": {"$ref": "#/$defs/mapping"},
				"sessionData": {"$ref": "#/$defs/sessionData"}
			},
			"required": ["type", "mapping", "sessionData"],
			"additionalProperties": false
		}
	]
}`

// Parser parses the schema's scope-configuration block into a typed
// table, validating entries against the consent-configuration
// meta-schema. Invalid entries are dropped with a warning; one malformed
// scope never invalidates the rest of the block.
type Parser struct {
	keyword string
	meta    *jsonschema.Schema
}

// NewParser compiles the meta-schema once for the given extension keyword.
func NewParser(keyword string) (*Parser, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(scopeConfigMetaSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse consent-config meta-schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("spice://consent-config", doc); err != nil {
		return nil, fmt.Errorf("failed to register consent-config meta-schema: %w", err)
	}

	meta, err := compiler.Compile("spice://consent-config")
	if err != nil {
		return nil, fmt.Errorf("failed to compile consent-config meta-schema: %w", err)
	}

	return &Parser{
		keyword: keyword,
		meta:    meta,
	}, nil
}

// Parse reads the schema's top-level scope-configuration block and
// synthesizes the default value configuration for every walked scope that
// has no explicit entry: collect first, both destinations named after the
// scope itself.
func (p *Parser) Parse(schemaJSON []byte, walked *ScopePointers) (*ScopeConfigs, []Warning) {
	configs := newScopeConfigs()
	var warnings []Warning

	root := gjson.ParseBytes(schemaJSON)
	if block := member(root, p.keyword); block.Exists() {
		block.Get("scopes").ForEach(func(key, entry gjson.Result) bool {
			scope := key.String()

			cfg, err := p.parseEntry(entry)
			if err != nil {
				warnings = append(warnings, Warning{
					Scope:  scope,
					Reason: err.Error(),
				})
				return true
			}

			configs.add(scope, cfg)
			return true
		})
	}

	if walked != nil {
		for _, scope := range walked.Scopes() {
			if _, ok := configs.Get(scope); ok {
				continue
			}
			configs.add(scope, &ValueScope{
				Collect: CollectFirst,
				Session: SessionData{IDToken: scope, AccessToken: scope},
			})
		}
	}

	return configs, warnings
}

// parseEntry validates one configuration entry against the meta-schema
// and decodes it into its variant.
func (p *Parser) parseEntry(entry gjson.Result) (ScopeConfig, error) {
	var instance any
	if err := json.Unmarshal([]byte(entry.Raw), &instance); err != nil {
		return nil, fmt.Errorf("entry is not valid JSON: %w", err)
	}

	if err := p.meta.Validate(instance); err != nil {
		return nil, fmt.Errorf("entry fails consent-config validation: %w", err)
	}

	switch entry.Get("type").String() {
	case "value":
		collect := CollectPolicy(entry.Get("collect").String())
		if collect == "" {
			collect = CollectFirst
		}
		return &ValueScope{
			Collect: collect,
			Session: decodeSessionData(entry.Get("sessionData")),
		}, nil
	case "composite":
		mapping, err := decodeMappingNode(entry.Get("mapping"))
		if err != nil {
			return nil, err
		}
		return &CompositeScope{
			Mapping: mapping,
			Session: decodeSessionData(entry.Get("sessionData")),
		}, nil
	default:
		// Unreachable after meta-schema validation, kept for the closed-set contract.
		return nil, fmt.Errorf("unknown scope configuration type %q", entry.Get("type").String())
	}
}

func decodeSessionData(node gjson.Result) SessionData {
	return SessionData{
		IDToken:     node.Get("idToken").String(),
		AccessToken: node.Get("accessToken").String(),
	}
}

func decodeMappingNode(node gjson.Result) (MappingNode, error) {
	switch node.Get("type").String() {
	case "object":
		var fields []ObjectField
		var decodeErr error
		node.Get("properties").ForEach(func(key, child gjson.Result) bool {
			childNode, err := decodeMappingNode(child)
			if err != nil {
				decodeErr = err
				return false
			}
			fields = append(fields, ObjectField{Name: key.String(), Node: childNode})
			return true
		})
		if decodeErr != nil {
			return nil, decodeErr
		}
		return ObjectNode{Fields: fields}, nil
	case "tuple":
		var items []MappingNode
		var decodeErr error
		node.Get("prefixItems").ForEach(func(_, child gjson.Result) bool {
			childNode, err := decodeMappingNode(child)
			if err != nil {
				decodeErr = err
				return false
			}
			items = append(items, childNode)
			return true
		})
		if decodeErr != nil {
			return nil, decodeErr
		}
		return TupleNode{Items: items}, nil
	case "path":
		// A malformed pointer is kept as-is: pointer syntax errors are a
		// resolution-time concern and resolve to nothing.
		return PathNode{Pointer: traits.Parse(member(node, "$ref").String())}, nil
	default:
		return nil, fmt.Errorf("unknown mapping node type %q", node.Get("type").String())
	}
}
