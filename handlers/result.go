// handlers/result.go
package handlers

import (
	"archery-competition-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupResultRoutes(app *fiber.App, resultService *services.ResultService) {
	app.Post("/results", resultService.SubmitResult)
	app.Get("/results", resultService.GetAllResults)
	app.Delete("/results/:id", resultService.DeleteResult)
}
