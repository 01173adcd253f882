package tracker

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Project is a tracker project as returned by the project search endpoint.
type Project struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// String returns "KEY (Name)" or just the key.
func (p Project) String() string {
	if p.Name == "" {
		return p.Key
	}
	return p.Key + " (" + p.Name + ")"
}

type projectSearchResponse struct {
	Values []Project `json:"values"`
}

type projectStatusResponse struct {
	LastUpdated json.RawMessage `json:"lastUpdated"`
}

type archiveRequest struct {
	Status string `json:"status"`
}

// Layouts carrying their own zone, or date-only (read as UTC).
// Jira emits a numeric zone without a colon.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02",
}

// Date-time layouts without a zone are read in the local zone.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// parseLastUpdated interprets the raw lastUpdated field. null, false, 0 and
// "" mean the tracker has no timestamp. Numbers are Unix milliseconds.
// Anything else that does not parse is treated as absent.
func parseLastUpdated(raw json.RawMessage) *time.Time {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		return parseTimestamp(v)
	case json.Number:
		ms, err := v.Float64()
		if err != nil || ms == 0 {
			return nil
		}
		t := time.UnixMilli(int64(ms))
		return &t
	default:
		return nil
	}
}

// parseTimestamp returns nil for empty or unparseable values.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
