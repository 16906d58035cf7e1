// Package resolver maps the id or free-text hint carried by an edit/delete
// action to one of the acting user's records.
package resolver

import (
	"context"
	"strings"

	"bme-workers/internal/domain"

	"github.com/samber/lo"
)

// Hint identifies a target record. ID wins when set; otherwise Text is
// matched as a case-insensitive substring of Field.
type Hint struct {
	ID    string
	Field string
	Text  string
}

// Empty reports whether the hint can never match.
func (h Hint) Empty() bool {
	return strings.TrimSpace(h.ID) == "" && strings.TrimSpace(h.Text) == ""
}

// Find picks the target from records. Records are assumed to be the
// acting user's own list.
func Find(records []domain.Record, h Hint) (domain.Record, bool) {
	if id := strings.TrimSpace(h.ID); id != "" {
		return lo.Find(records, func(r domain.Record) bool { return r.ID == id })
	}
	needle := strings.ToLower(strings.TrimSpace(h.Text))
	if needle == "" {
		return domain.Record{}, false
	}
	return lo.Find(records, func(r domain.Record) bool {
		return strings.Contains(strings.ToLower(r.Text(h.Field)), needle)
	})
}

// Resolve lists the user's records from svc and applies Find. A list
// failure is returned unchanged, a miss as ok=false.
func Resolve(ctx context.Context, svc domain.Service, userID string, h Hint) (domain.Record, bool, error) {
	if h.Empty() {
		return domain.Record{}, false, nil
	}
	records, err := svc.List(ctx, userID)
	if err != nil {
		return domain.Record{}, false, err
	}
	rec, ok := Find(records, h)
	return rec, ok, nil
}
