package remote

import (
	"habitsync/internal/agent/models"
	"habitsync/internal/protocol"
)

func habitsFromSnapshot(snap *protocol.Snapshot) []models.Habit {
	result := make([]models.Habit, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		result = append(result, models.Habit{
			ID:        h.ID,
			Name:      h.Name,
			Kind:      h.Kind,
			CreatedAt: h.CreatedAt,
		})
	}
	return result
}

func profileFromSnapshot(p *protocol.Profile) *models.Profile {
	return &models.Profile{
		Name:     p.Name,
		Gender:   p.Gender,
		AgeGroup: p.AgeGroup,
	}
}
