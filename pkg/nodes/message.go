package nodes

import (
	"fmt"

	"github.com/dukex/workflows-api/pkg/models"
)

func init() {
	register(&Binding{
		Type:        models.NodeTypeMessage,
		Description: "Sends a text message and tracks its delivery status",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Message body",
				},
				"status": map[string]any{
					"type":        []string{"string", "null"},
					"enum":        []any{"pending", "sent", "opened", nil},
					"description": "Delivery status of the message",
				},
			},
			"required": []string{"text"},
		},
		decode:     decodeMessage,
		patch:      patchMessage,
		fields:     messageFields,
		toRecord:   messageRecord,
		fromRecord: messageFromRecord,
	})
}

func decodeMessage(data map[string]any) models.Configuration {
	cfg := models.MessageConfiguration{Text: data["text"].(string)}
	cfg.Status = messageStatus(data["status"])

	return cfg
}

// patchMessage writes the keys present in the patch; an explicit null status clears it.
func patchMessage(current models.Configuration, patch map[string]any) models.Configuration {
	cfg := current.(models.MessageConfiguration)

	if text, ok := patch["text"]; ok {
		cfg.Text = text.(string)
	}

	if status, ok := patch["status"]; ok {
		cfg.Status = messageStatus(status)
	}

	return cfg
}

func messageStatus(raw any) *models.MessageStatus {
	value, ok := raw.(string)
	if !ok {
		return nil
	}

	status := models.MessageStatus(value)

	return &status
}

func messageFields(cfg models.Configuration) map[string]any {
	message := cfg.(models.MessageConfiguration)

	var status any
	if message.Status != nil {
		status = string(*message.Status)
	}

	return map[string]any{
		"text":   message.Text,
		"status": status,
	}
}

func messageRecord(cfg models.Configuration, record *models.ConfigurationRecord) {
	message := cfg.(models.MessageConfiguration)
	text := message.Text

	record.Text = &text
	record.Status = message.Status
}

func messageFromRecord(record *models.ConfigurationRecord) (models.Configuration, error) {
	if record.Text == nil {
		return nil, fmt.Errorf("message configuration %s has no text", record.ID)
	}

	return models.MessageConfiguration{Text: *record.Text, Status: record.Status}, nil
}
