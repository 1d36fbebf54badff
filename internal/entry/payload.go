package entry

import (
	"encoding/json"
	"fmt"
)

// Payload is the JSON object relayed from publisher to broker to viewers.
// Field order matches the declaration order below; identifiers travel as
// numbers. ProducerUUID is an extension for deployments where multiple
// producers share one broker and seq_id alone cannot deduplicate; it is
// omitted when unset so single-producer payloads stay minimal.
type Payload struct {
	Timestamp    uint64 `json:"timestamp"`
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	ActivityUUID uint64 `json:"activity_uuid"`
	SeqID        uint64 `json:"seq_id"`
	ParentUUID   uint64 `json:"parent_uuid"`
	Message      string `json:"message"`
	ProducerUUID string `json:"producer_uuid,omitempty"`
}

// EncodePayload serializes the entry for the relay channel. producerID may be
// empty. encoding/json escapes quotes, backslashes, and all C0 control bytes,
// so any message survives the trip intact.
func EncodePayload(e Entry, producerID string) ([]byte, error) {
	return json.Marshal(Payload{
		Timestamp:    e.Timestamp,
		Type:         e.Kind.String(),
		Severity:     e.Severity.String(),
		ActivityUUID: e.ActivityID,
		SeqID:        e.Seq,
		ParentUUID:   e.ParentID,
		Message:      e.Message,
		ProducerUUID: producerID,
	})
}

// DecodePayload parses a relay payload back into an Entry plus the optional
// producer id. It rejects payloads whose kind or severity name is unknown.
func DecodePayload(b []byte) (Entry, string, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Entry{}, "", fmt.Errorf("entry: decode payload: %w", err)
	}
	kind, err := ParseKind(p.Type)
	if err != nil {
		return Entry{}, "", err
	}
	severity, err := ParseSeverity(p.Severity)
	if err != nil {
		return Entry{}, "", err
	}
	return Entry{
		Kind:       kind,
		Severity:   severity,
		Timestamp:  p.Timestamp,
		ActivityID: p.ActivityUUID,
		Seq:        p.SeqID,
		ParentID:   p.ParentUUID,
		Message:    p.Message,
	}, p.ProducerUUID, nil
}
