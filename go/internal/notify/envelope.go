package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// ProgressChanged announces that an identity's remote record was written
type ProgressChanged struct {
	EventID   string          `json:"eventId"`
	Identity  models.Identity `json:"identity"`
	Op        string          `json:"op"`
	Timestamp time.Time       `json:"timestamp"`
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// Subject returns the per-identity subject under prefix
func Subject(prefix string, id models.Identity) string {
	return fmt.Sprintf("%s.%s", prefix, subjectReplacer.Replace(id.String()))
}

// DecodeProgressChanged parses an event envelope
func DecodeProgressChanged(data []byte) (ProgressChanged, error) {
	var ev ProgressChanged
	if err := json.Unmarshal(data, &ev); err != nil {
		return ProgressChanged{}, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	if ev.Identity == "" {
		return ProgressChanged{}, fmt.Errorf("event %s has no identity", ev.EventID)
	}
	return ev, nil
}
