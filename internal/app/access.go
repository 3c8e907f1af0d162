package app

import "growthtrack/internal/domain"

// authorize allows access only to the owner of m.
func authorize(m *domain.Measurement, requesterID string) error {
	if requesterID == "" || m.OwnerID != requesterID {
		return domain.ErrAccessDenied
	}
	return nil
}

// ownedBy keeps the measurements that belong to requesterID, in order.
func ownedBy(ms []domain.Measurement, requesterID string) []domain.Measurement {
	out := make([]domain.Measurement, 0, len(ms))
	for _, m := range ms {
		if authorize(&m, requesterID) == nil {
			out = append(out, m)
		}
	}
	return out
}
