package handler

import (
	"github.com/gofiber/fiber/v2"

	"policytrack/internal/service"
	"policytrack/internal/session"
)

// Services are the collaborators the HTTP routes delegate to.
type Services struct {
	Documents service.DocumentService
	Digests   service.DigestService
	Sessions  session.Store
	Session   SessionOptions
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, db Pinger, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/sessions", CreateSession(svc.Sessions, svc.Session))
	app.Delete("/sessions", DeleteSession(svc.Sessions, svc.Session))

	app.Get("/documents", ListDocuments(svc.Documents))
	app.Post("/documents", CreateDocument(svc.Documents))
	app.Get("/documents/:id", GetDocument(svc.Documents))
	app.Get("/documents/:id/compare", CompareVersions(svc.Documents))
	app.Post("/documents/:id/versions", UploadVersion(svc.Documents))
	app.Post("/documents/:id/versions/:versionId/approve", ApproveVersion(svc.Documents))
	app.Post("/documents/:id/versions/:versionId/reject", RejectVersion(svc.Documents))

	app.Post("/match", MatchUpload(svc.Documents))

	app.Get("/digest/:type/periods", ListPeriods(svc.Digests))
	app.Get("/digest/:type/:year/:period", GetDigest(svc.Digests))
}
