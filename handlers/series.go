// handlers/series.go
package handlers

import (
	"archery-competition-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSeriesRoutes(app *fiber.App, seriesService *services.SeriesService) {
	app.Post("/series", seriesService.CreateSeries)
	app.Get("/series", seriesService.GetAllSeries)
	app.Get("/series/:id/targets", seriesService.GetSeriesTargets)
	app.Delete("/series/:id", seriesService.DeleteSeries)
}
