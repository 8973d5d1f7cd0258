package types

// Conversation is one dataset entry handed to the extractor.
type Conversation struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"conversation"`
}

// RawRecord is a schema-less record as it arrives from the extractor or the
// ground-truth file. Values are whatever encoding/json produced.
type RawRecord map[string]any

// Get returns the value stored under key, or nil when the key is absent.
// It is safe to call on a nil record.
func (r RawRecord) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Has reports whether key is present with a non-nil value.
func (r RawRecord) Has(key string) bool {
	return r.Get(key) != nil
}

// Entities returns the nested "entities" mapping of a ground-truth record.
// A missing or non-object value yields an empty record.
func (r RawRecord) Entities() RawRecord {
	switch e := r.Get("entities").(type) {
	case map[string]any:
		return RawRecord(e)
	case RawRecord:
		return e
	default:
		return RawRecord{}
	}
}

// ChatID returns the record's "chat_id" as a string, or "" when absent.
func (r RawRecord) ChatID() string {
	s, _ := r.Get("chat_id").(string)
	return s
}
