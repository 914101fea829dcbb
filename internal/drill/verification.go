package drill

import (
	"fmt"

	"github.com/okian/safetravel/internal/domain/model"
)

// verify checks the alert and toast feeds against what the drill did: each
// committed session raised exactly one dispatched alert for its tourist with
// a matching toast, and no released hold raised anything.
func verify(outcomes []outcome, alerts []model.Alert, notes []model.Notification) []string {
	bySession := make(map[string][]model.Alert, len(alerts))
	for _, a := range alerts {
		bySession[a.SessionID] = append(bySession[a.SessionID], a)
	}
	toasts := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		toasts[n.AlertID] = struct{}{}
	}

	var failures []string
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, sid := range o.released {
			if n := len(bySession[sid]); n > 0 {
				failures = append(failures, fmt.Sprintf("tourist %s: released session %s raised %d alert(s)", o.touristID, sid, n))
			}
		}

		got := bySession[o.committed]
		switch {
		case len(got) == 0:
			failures = append(failures, fmt.Sprintf("tourist %s: committed session %s raised no alert", o.touristID, o.committed))
			continue
		case len(got) > 1:
			failures = append(failures, fmt.Sprintf("tourist %s: committed session %s raised %d alerts", o.touristID, o.committed, len(got)))
		}
		a := got[0]
		if a.TouristID != o.touristID {
			failures = append(failures, fmt.Sprintf("tourist %s: alert %s belongs to tourist %s", o.touristID, a.ID, a.TouristID))
		}
		if a.DispatchedAt.IsZero() || a.Unit == "" {
			failures = append(failures, fmt.Sprintf("tourist %s: alert %s was not dispatched", o.touristID, a.ID))
		}
		if _, ok := toasts[a.ID]; !ok {
			failures = append(failures, fmt.Sprintf("tourist %s: alert %s has no toast", o.touristID, a.ID))
		}
	}
	return failures
}
