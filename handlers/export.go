// handlers/export.go
package handlers

import (
	"archery-competition-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupExportRoutes(app *fiber.App, exportService *services.ExportService) {
	app.Get("/export/json", exportService.ExportJSON)
	app.Get("/export/archers.csv", exportService.ExportArchersCSV)
	app.Get("/export/results.csv", exportService.ExportResultsCSV)
	app.Get("/export/series.csv", exportService.ExportSeriesCSV)
	app.Get("/stats", exportService.GetStats)
	app.Post("/admin/reset", exportService.ResetCompetition)
}
