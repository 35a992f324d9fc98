package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

// Import decodes a JSON backup. Every record gets a fresh id. Records missing
// their dates are stamped with now. One bad record rejects the whole payload.
func Import(data []byte, now time.Time) ([]domain.Project, error) {
	var doc struct {
		Projects json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: not a JSON backup", ErrInvalidPayload)
	}
	raw := bytes.TrimSpace(doc.Projects)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: missing projects array", ErrInvalidPayload)
	}

	var items []domain.Project
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	out := make([]domain.Project, 0, len(items))
	for i, p := range items {
		p.ID = domain.NewID()
		p.OwnerID = ""
		if p.Status == "" {
			p.Status = domain.StatusActive
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.LastActivity.IsZero() {
			p.LastActivity = p.CreatedAt
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: project %d: %v", ErrInvalidPayload, i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}
