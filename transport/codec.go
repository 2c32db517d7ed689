package transport

import (
	"strings"

	"github.com/goliatone/go-identity-client/core"
)

// decodeUserRecord lifts the well-known identity fields out of a user
// payload and keeps everything else as attributes. The identity service
// is loose about shapes, so all lookups tolerate missing keys. When a
// payload has no explicit id, the configured identity attribute keys
// the user before the login fallback.
func decodeUserRecord(payload map[string]any, attrID string) core.UserRecord {
	if len(payload) == 0 {
		return core.UserRecord{}
	}

	record := core.UserRecord{
		Attributes: map[string]any{},
	}
	for key, value := range payload {
		switch key {
		case "id":
			record.ID = stringValue(value)
		case "login", "user", "username":
			if record.Login == "" {
				record.Login = stringValue(value)
			}
		case "name", "cn", "fullname":
			if record.Name == "" {
				record.Name = stringValue(value)
			}
		case "roles":
			record.Roles = decodeStringCollection(value)
		case "groups":
			record.Groups = decodeStringCollection(value)
		case "permissions":
			record.Permissions = decodeStringCollection(value)
		default:
			record.Attributes[key] = value
		}
	}
	if record.ID == "" && attrID != "" {
		record.ID = strings.TrimSpace(stringValue(payload[attrID]))
	}
	if record.ID == "" {
		record.ID = record.Login
	}
	return record
}

func decodeUserRecords(payloads []map[string]any, attrID string) []core.UserRecord {
	records := make([]core.UserRecord, 0, len(payloads))
	for _, payload := range payloads {
		records = append(records, decodeUserRecord(payload, attrID))
	}
	return records
}

// decodeStringCollection accepts either a JSON array of names or an
// object whose keys are the names with truthy values, both of which the
// identity service emits for roles and permissions.
func decodeStringCollection(value any) []string {
	switch v := value.(type) {
	case []any:
		return decodeStringSlice(v)
	case []string:
		return append([]string(nil), v...)
	case map[string]any:
		out := make([]string, 0, len(v))
		for name, enabled := range v {
			if granted, ok := enabled.(bool); ok && !granted {
				continue
			}
			out = append(out, name)
		}
		return out
	default:
		return nil
	}
}

func decodeStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(stringValue(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}
