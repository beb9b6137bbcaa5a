package nodes

import "github.com/dukex/workflows-api/pkg/models"

func init() {
	register(&Binding{
		Type:        models.NodeTypeEnd,
		Description: "Terminal node of a workflow",
		schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		decode: func(map[string]any) models.Configuration {
			return models.EndConfiguration{}
		},
		patch: func(current models.Configuration, _ map[string]any) models.Configuration {
			return current
		},
		fields: func(models.Configuration) map[string]any {
			return map[string]any{}
		},
		toRecord: func(models.Configuration, *models.ConfigurationRecord) {},
		fromRecord: func(*models.ConfigurationRecord) (models.Configuration, error) {
			return models.EndConfiguration{}, nil
		},
	})
}
