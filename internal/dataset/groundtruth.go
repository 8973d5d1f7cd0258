package dataset

import (
	"encoding/json"
	"fmt"

	"lead-extract-eval/internal/logger"
	"lead-extract-eval/internal/types"
)

// GroundTruth maps chat ids to their labelled records.
type GroundTruth map[string]types.RawRecord

// Lookup returns the record for id and whether it exists.
func (g GroundTruth) Lookup(id string) (types.RawRecord, bool) {
	r, ok := g[id]
	return r, ok
}

// LoadGroundTruth reads a JSON array of labelled records keyed by chat_id.
// Entries without a chat_id are dropped with a warning; a later duplicate
// replaces an earlier one.
func LoadGroundTruth(path string) (GroundTruth, error) {
	log := logger.New().WithField("component", "dataset.groundtruth").WithField("path", path)

	data, err := readJSONFile(path)
	if err != nil {
		return nil, err
	}
	var records []types.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse ground truth: %w", err)
	}

	out := make(GroundTruth, len(records))
	for i, r := range records {
		id := r.ChatID()
		if id == "" {
			log.WithField("index", i).Warn("ground truth entry without chat_id dropped")
			continue
		}
		if _, dup := out[id]; dup {
			log.WithField("chat_id", id).Warn("duplicate ground truth entry, keeping the last one")
		}
		out[id] = r
	}
	log.WithField("records", len(out)).Info("ground truth loaded")
	return out, nil
}
