package calculation

import (
	"github.com/fincast/fincast/internal/domain"
)

// agesForYear resolves every person's age and liveness for one projection
// year. Ages keep advancing past a person's final age; Alive turning false
// is what removes them from per-person cash flows.
func agesForYear(s *domain.Scenario, year int) []domain.PersonAge {
	ages := make([]domain.PersonAge, len(s.People))
	for i := range s.People {
		p := &s.People[i]
		ages[i] = domain.PersonAge{
			Name:  p.Name,
			Age:   p.AgeInYear(year),
			Alive: p.AliveInYear(year),
		}
	}
	return ages
}

// ownerActive reports whether a stream owner participates in the year's
// cash flows, and at what age the stream window is evaluated. Joint
// streams follow the oldest person and stay active while anyone is alive.
func ownerActive(s *domain.Scenario, owner string, year int) (int, bool) {
	if owner == domain.JointOwner {
		anyAlive := false
		for i := range s.People {
			if s.People[i].AliveInYear(year) {
				anyAlive = true
				break
			}
		}
		oldest := s.OldestPerson()
		if oldest == nil {
			return 0, false
		}
		return oldest.AgeInYear(year), anyAlive
	}
	p := s.PersonByName(owner)
	if p == nil {
		return 0, false
	}
	return p.AgeInYear(year), p.AliveInYear(year)
}
