package lifecycle

import "NeighborGuard/internal/models"

// PriorityTable ranks statuses for upgrade gating only. FALSE_ALARM outranks
// OPEN so a stale OPEN-producing reaction cannot revert it.
type PriorityTable map[models.EventStatus]int

// DefaultPriorities 默认优先级
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		models.StatusOpen:            0,
		models.StatusFalseAlarm:      1,
		models.StatusResolvedOK:      2,
		models.StatusAcked:           3,
		models.StatusWatching:        4,
		models.StatusResolvedWarning: 5,
		models.StatusEscalated:       6,
	}
}

// Rank returns 0 for statuses missing from the table.
func (p PriorityTable) Rank(s models.EventStatus) int {
	return p[s]
}
