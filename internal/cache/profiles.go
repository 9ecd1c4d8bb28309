package cache

import "platescout/internal/models"

// Profiles caches lightweight profile summaries (name + avatar reference)
// keyed by user id. Entries are small and uniform, so the cache is bounded
// by count alone.
type Profiles struct {
	c *Cache[string, models.ProfileSummary]
}

func NewProfiles(maxEntries int) *Profiles {
	return &Profiles{c: New[string, models.ProfileSummary](maxEntries, 0)}
}

func (p *Profiles) Get(id string) (models.ProfileSummary, bool) {
	return p.c.Get(id)
}

func (p *Profiles) Set(s models.ProfileSummary) {
	p.c.Set(s.ID, s)
}

// GetMany splits ids into cached summaries and the ids still missing,
// preserving the input order of the missing list.
func (p *Profiles) GetMany(ids []string) (hits []models.ProfileSummary, missing []string) {
	for _, id := range ids {
		if s, ok := p.c.Get(id); ok {
			hits = append(hits, s)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing
}

// SetMany stores a batch of summaries, e.g. after a chunked remote fetch.
func (p *Profiles) SetMany(summaries []models.ProfileSummary) {
	for _, s := range summaries {
		p.c.Set(s.ID, s)
	}
}

func (p *Profiles) Remove(id string) { p.c.Remove(id) }

func (p *Profiles) Clear() { p.c.Clear() }
