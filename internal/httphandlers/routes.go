package httphandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *ApiHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/v1", func(rr chi.Router) {
		rr.Get("/h", func(writer http.ResponseWriter, request *http.Request) {
			ok(writer, "nimbus is up", struct{}{})
		})

		rr.Group(func(rg chi.Router) {
			rg.Use(h.authenticate)

			rg.Post("/profiles", h.CreateProfile)
			rg.Get("/profiles", h.ListProfiles)
			rg.Get("/profiles/{profile_id}", h.GetProfile)
			rg.Patch("/profiles/{profile_id}", h.UpdateProfile)
			rg.Delete("/profiles/{profile_id}", h.DeleteProfile)
			rg.Post("/profiles/{profile_id}/activate", h.ActivateProfile)

			rg.Post("/storage", h.ConfigureStorage)

			rg.Post("/profiles/{profile_id}/backup", h.RunBackup)
			rg.Get("/profiles/{profile_id}/preview", h.PreviewBackup)
			rg.Post("/profiles/{profile_id}/restore", h.Restore)
			rg.Get("/profiles/{profile_id}/files", h.ListFiles)
			rg.Get("/profiles/{profile_id}/operations", h.History)
			rg.Delete("/operations", h.ClearHistory)

			rg.Put("/profiles/{profile_id}/schedule", h.SetSchedule)
			rg.Delete("/profiles/{profile_id}/schedule", h.RemoveSchedule)
			rg.Get("/profiles/{profile_id}/schedule", h.ScheduleStatus)

			rg.Post("/logs/sync", h.SyncLogs)
			rg.Get("/events", h.Events)
			rg.Get("/status", h.Status)
		})
	})
	return r
}
