package llm

import "encoding/json"

// parseJSONSchema converts a JSON schema string to a map for embedding into
// a provider request body. Returns nil on empty or malformed input; the API
// reports the error in that case.
func parseJSONSchema(schemaStr string) map[string]interface{} {
	if schemaStr == "" {
		return nil
	}
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(schemaStr), &schema); err != nil {
		return nil
	}
	return schema
}
