// Package leadgen produces a synthetic lead feed against a running lead queue server.
package leadgen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/google/uuid"
)

var (
	firstNames = []string{"Anna", "Ben", "Clara", "David", "Elif", "Finn", "Greta", "Hugo", "Ines", "Jonas", "Lea", "Mats"}
	lastNames  = []string{"Becker", "Schulz", "Meyer", "Wagner", "Koch", "Richter", "Klein", "Wolf", "Neumann", "Braun"}
	companies  = []string{"Nordwind", "Alpen", "Rheinwerk", "Helix", "Quantum", "Brightline", "Kestrel", "Polaris", "Vireo", "Lumen"}
	suffixes   = []string{"GmbH", "AG", "Labs", "Systems", "Group"}

	// Tags a lead may carry; the first two move business value
	tagPool = []string{types.TagEnterprise, types.TagHotLead, "SaaS", "SMB", "Retail", "Finance", "Healthcare", "Technical"}

	timeZones = []string{"Europe/Berlin", "Europe/London", "America/New_York", "America/Los_Angeles", "Asia/Tokyo", "Australia/Sydney"}

	slaChoices = []int{30, 45, 60, 90, 120}
)

// Generator creates random but valid leads
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a new lead generator
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Lead returns a fresh lead with a new ID and no time spent in the queue
func (g *Generator) Lead() types.Lead {
	g.mu.Lock()
	defer g.mu.Unlock()

	first := pick(g.rng, firstNames)
	last := pick(g.rng, lastNames)
	company := fmt.Sprintf("%s %s", pick(g.rng, companies), pick(g.rng, suffixes))

	lead := types.Lead{
		ID:              uuid.New().String(),
		Name:            first + " " + last,
		Company:         company,
		Email:           fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
		CompanySize:     companySize(g.rng),
		Score:           float64(g.rng.Intn(101)),
		RecentActions:   g.rng.Intn(6),
		EmailsSent:      g.rng.Intn(4),
		CallsMade:       g.rng.Intn(3),
		WaitMinutes:     g.rng.Intn(10),
		Online:          g.rng.Float64() < 0.4,
		LastSeenMinutes: g.rng.Intn(240),
		TimeZone:        pick(g.rng, timeZones),
		Tags:            g.tags(),
	}

	if g.rng.Float64() < 0.7 {
		sla := pick(g.rng, slaChoices)
		lead.SLAMinutes = &sla
	}
	if g.rng.Float64() < 0.5 {
		deal := float64(5000 + g.rng.Intn(200000))
		lead.DealSize = &deal
	}
	if lead.Online {
		lead.LastSeenMinutes = 0
	}
	return lead
}

// tags picks up to three distinct tags
func (g *Generator) tags() []string {
	n := g.rng.Intn(4)
	tags := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(tagPool))[:n] {
		tags = append(tags, tagPool[i])
	}
	return tags
}

// companySize skews small: most leads are SMBs, a few are large enterprises
func companySize(rng *rand.Rand) int {
	switch r := rng.Float64(); {
	case r < 0.6:
		return 1 + rng.Intn(200)
	case r < 0.85:
		return 200 + rng.Intn(800)
	default:
		return 1000 + rng.Intn(20000)
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
