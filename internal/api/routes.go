package api

import "github.com/go-chi/chi/v5"

// Handlers groups every REST handler the server exposes
type Handlers struct {
	Queue    *QueueHandler
	Leads    *LeadHandler
	Agents   *AgentHandler
	Admin    *AdminHandler
	Outcomes *OutcomeHandler
}

// Register mounts the REST routes on r
func (h Handlers) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/queue", h.Queue.GetQueue)
		r.Get("/queue/stats", h.Queue.GetStats)

		r.Post("/leads", h.Leads.CreateLead)
		r.Get("/leads/{leadId}", h.Leads.GetLead)
		r.Post("/leads/{leadId}/route", h.Leads.RouteLead)
		r.Delete("/leads/{leadId}", h.Leads.AbandonLead)

		r.Get("/agents", h.Agents.ListAgents)
		r.Put("/agents/{agentId}/availability", h.Agents.SetAvailability)
		r.Get("/agents/{agentId}/outcomes", h.Outcomes.GetAgentOutcomes)

		r.Get("/outcomes", h.Outcomes.GetOutcomes)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/tick", h.Admin.Tick)
			r.Delete("/leads", h.Admin.WipeLeads)
			r.Delete("/outcomes", h.Admin.WipeOutcomes)
		})
	})

	// Internal routes for the demo lead feed
	r.Route("/internal", func(r chi.Router) {
		r.Post("/leads", h.Leads.CreateLead)
	})
}
