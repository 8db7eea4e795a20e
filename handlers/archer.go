// handlers/archer.go
package handlers

import (
	"archery-competition-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupArcherRoutes(app *fiber.App, archerService *services.ArcherService) {
	app.Post("/archers", archerService.RegisterArchers)
	app.Get("/archers", archerService.GetAllArchers)
	app.Get("/archers/:id", archerService.GetArcher)
	app.Put("/archers/:id/assignment", archerService.UpdateAssignment)
	app.Delete("/archers/:id", archerService.DeleteArcher)
}
