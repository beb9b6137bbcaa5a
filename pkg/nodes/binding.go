// Package nodes binds every node type to the shape of its configuration: the JSON schema
// its payload must satisfy, how the payload decodes and patches into a models.Configuration,
// how the configuration flattens into a resource view and how it maps to its stored record.
package nodes

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownNodeType indicates a node type outside the closed set of bindings.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidConfiguration indicates a configuration payload that does not satisfy its schema.
	ErrInvalidConfiguration = errors.New("invalid node configuration")
)

// ConfigurationError lists the schema violations of a configuration payload.
type ConfigurationError struct {
	NodeType models.NodeType
	Details  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.NodeType, strings.Join(e.Details, "; "))
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// Binding describes one node type.
type Binding struct {
	Type        models.NodeType
	Description string

	schema      map[string]any
	createCheck *gojsonschema.Schema
	patchCheck  *gojsonschema.Schema

	decode     func(data map[string]any) models.Configuration
	patch      func(current models.Configuration, patch map[string]any) models.Configuration
	fields     func(cfg models.Configuration) map[string]any
	toRecord   func(cfg models.Configuration, record *models.ConfigurationRecord)
	fromRecord func(record *models.ConfigurationRecord) (models.Configuration, error)
}

var bindings = map[models.NodeType]*Binding{}

func register(binding *Binding) {
	binding.createCheck = compile(binding.schema)

	// Patches share the property rules but every property is optional.
	patchSchema := maps.Clone(binding.schema)
	delete(patchSchema, "required")
	binding.patchCheck = compile(patchSchema)

	bindings[binding.Type] = binding
}

func compile(schema map[string]any) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid node configuration schema: %v", err))
	}

	return compiled
}

// Lookup returns the binding of a node type.
func Lookup(nodeType models.NodeType) (*Binding, error) {
	binding, ok := bindings[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}

	return binding, nil
}

// For returns the binding of a configuration's variant.
func For(cfg models.Configuration) (*Binding, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: missing configuration", ErrUnknownNodeType)
	}

	return Lookup(cfg.NodeType())
}

// Types returns the node types that have a binding, in declaration order.
func Types() []models.NodeType {
	types := make([]models.NodeType, 0, len(bindings))

	for _, nodeType := range models.NodeTypes {
		if _, ok := bindings[nodeType]; ok {
			types = append(types, nodeType)
		}
	}

	return types
}

// Schema returns the JSON schema of the configuration payload.
func (b *Binding) Schema() map[string]any {
	return b.schema
}

// Decode validates a creation payload and builds the configuration it describes.
func (b *Binding) Decode(data map[string]any) (models.Configuration, error) {
	if data == nil {
		data = map[string]any{}
	}

	if err := b.validate(b.createCheck, data); err != nil {
		return nil, err
	}

	return b.decode(data), nil
}

// Patch validates a partial payload and applies it to the current configuration.
// Keys absent from the patch are left untouched.
func (b *Binding) Patch(current models.Configuration, patch map[string]any) (models.Configuration, error) {
	if current == nil || current.NodeType() != b.Type {
		return nil, &ConfigurationError{NodeType: b.Type, Details: []string{"configuration variant does not match node type"}}
	}

	if patch == nil {
		patch = map[string]any{}
	}

	if err := b.validate(b.patchCheck, patch); err != nil {
		return nil, err
	}

	return b.patch(current, patch), nil
}

// Fields flattens the configuration into its variant fields.
func (b *Binding) Fields(cfg models.Configuration) map[string]any {
	return b.fields(cfg)
}

// Record converts the configuration into its stored form. Identity and timestamps are
// left for the caller.
func (b *Binding) Record(cfg models.Configuration) *models.ConfigurationRecord {
	record := &models.ConfigurationRecord{NodeType: b.Type}
	b.toRecord(cfg, record)

	return record
}

// FromRecord rebuilds the configuration held by a stored record.
func (b *Binding) FromRecord(record *models.ConfigurationRecord) (models.Configuration, error) {
	if record.NodeType != b.Type {
		return nil, fmt.Errorf("configuration record %s is %q, expected %q", record.ID, record.NodeType, b.Type)
	}

	return b.fromRecord(record)
}

func (b *Binding) validate(schema *gojsonschema.Schema, data map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return &ConfigurationError{NodeType: b.Type, Details: []string{err.Error()}}
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return &ConfigurationError{NodeType: b.Type, Details: details}
}

// identityKeys are the node keys that always win over variant fields in a flattened view.
var identityKeys = []string{"id", "node_type", "workflow_id", "created_by", "created_at", "updated_at"}

// IsIdentityKey reports whether key names a node identity field.
func IsIdentityKey(key string) bool {
	for _, identity := range identityKeys {
		if key == identity {
			return true
		}
	}

	return false
}

// Flatten merges a node's identity with its configuration's variant fields. Nodes loaded
// without configuration flatten to their identity only.
func Flatten(node *models.Node) map[string]any {
	view := map[string]any{}

	if node.Config != nil {
		if binding, err := For(node.Config); err == nil {
			maps.Copy(view, binding.Fields(node.Config))
		}
	}

	view["id"] = node.ID
	view["node_type"] = node.Type
	view["workflow_id"] = node.WorkflowID
	view["created_by"] = node.CreatedBy
	view["created_at"] = node.CreatedAt
	view["updated_at"] = node.UpdatedAt

	return view
}
