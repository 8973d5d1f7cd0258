// Package dataset loads conversations and ground-truth labels from disk.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"lead-extract-eval/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadConversations reads a dataset file. .xlsx files are read with header
// heuristics; everything else is parsed as a JSON array of
// {"chat_id", "conversation"} objects.
func LoadConversations(path string) ([]types.Conversation, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadConversationsXLSX(path)
	}
	return loadConversationsJSON(path)
}

type conversationEntry struct {
	ChatID       string          `json:"chat_id"`
	Conversation json.RawMessage `json:"conversation"`
}

type turn struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

func loadConversationsJSON(path string) ([]types.Conversation, error) {
	data, err := readJSONFile(path)
	if err != nil {
		return nil, err
	}
	var entries []conversationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	out := make([]types.Conversation, 0, len(entries))
	for i, e := range entries {
		if e.ChatID == "" {
			return nil, fmt.Errorf("dataset entry %d has no chat_id", i)
		}
		out = append(out, types.Conversation{ChatID: e.ChatID, Text: conversationText(e.Conversation)})
	}
	return out, nil
}

// conversationText accepts a plain string or a list of speaker turns.
// Any other JSON shape is passed through verbatim.
func conversationText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var turns []turn
	if err := json.Unmarshal(raw, &turns); err == nil {
		lines := make([]string, 0, len(turns))
		for _, t := range turns {
			who := t.Speaker
			if who == "" {
				who = t.Role
			}
			msg := t.Text
			if msg == "" {
				msg = t.Message
			}
			if who == "" {
				lines = append(lines, msg)
				continue
			}
			lines = append(lines, who+": "+msg)
		}
		return strings.Join(lines, "\n")
	}
	return string(raw)
}

// loadConversationsXLSX auto-detects id and conversation columns by header.
func loadConversationsXLSX(path string) ([]types.Conversation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	idIdx, textIdx := -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case idIdx == -1 && (strings.Contains(l, "chat_id") || strings.Contains(l, "chat id") || l == "id"):
			idIdx = i
		case textIdx == -1 && (strings.Contains(l, "conversation") || strings.Contains(l, "transcript") || strings.Contains(l, "text")):
			textIdx = i
		}
	}
	if idIdx == -1 || textIdx == -1 {
		return nil, fmt.Errorf("missing chat id or conversation column in %q", rows[0])
	}

	var out []types.Conversation
	for _, r := range rows[1:] {
		if idIdx >= len(r) || strings.TrimSpace(r[idIdx]) == "" {
			// skip rows without an id quietly
			continue
		}
		c := types.Conversation{ChatID: strings.TrimSpace(r[idIdx])}
		if textIdx < len(r) {
			c.Text = r[textIdx]
		}
		out = append(out, c)
	}
	return out, nil
}

func readJSONFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}
