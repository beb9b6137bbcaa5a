package nodes

import (
	"fmt"

	"github.com/dukex/workflows-api/pkg/models"
)

func init() {
	register(&Binding{
		Type:        models.NodeTypeCondition,
		Description: "Branches on a condition expression",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"condition": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Expression evaluated to pick the outgoing edge",
				},
			},
			"required": []string{"condition"},
		},
		decode: func(data map[string]any) models.Configuration {
			return models.ConditionConfiguration{Condition: data["condition"].(string)}
		},
		patch: func(current models.Configuration, patch map[string]any) models.Configuration {
			cfg := current.(models.ConditionConfiguration)
			if condition, ok := patch["condition"]; ok {
				cfg.Condition = condition.(string)
			}

			return cfg
		},
		fields: func(cfg models.Configuration) map[string]any {
			return map[string]any{"condition": cfg.(models.ConditionConfiguration).Condition}
		},
		toRecord: func(cfg models.Configuration, record *models.ConfigurationRecord) {
			condition := cfg.(models.ConditionConfiguration).Condition
			record.Condition = &condition
		},
		fromRecord: func(record *models.ConfigurationRecord) (models.Configuration, error) {
			if record.Condition == nil {
				return nil, fmt.Errorf("condition configuration %s has no condition", record.ID)
			}

			return models.ConditionConfiguration{Condition: *record.Condition}, nil
		},
	})
}
