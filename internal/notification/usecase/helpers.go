package usecase

import (
	"sort"

	"parent-care-assistant/internal/model"
	"parent-care-assistant/internal/notification"
)

func parentName(p model.Parent) string {
	if p.Name != "" {
		return p.Name
	}
	return fallbackParentName
}

func titleFor(t model.NotificationType) string {
	return notification.Title(t)
}

// sortedParents keeps the periodic pass in a stable order.
func (st *sweepState) sortedParents() []model.Parent {
	out := make([]model.Parent, 0, len(st.parents))
	for _, p := range st.parents {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
