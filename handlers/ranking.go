// handlers/ranking.go
package handlers

import (
	"archery-competition-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRankingRoutes(app *fiber.App, rankingService *services.RankingService) {
	app.Get("/rankings", rankingService.GetAllRankings)
	app.Get("/rankings/:type", rankingService.GetRanking)
	app.Post("/rankings/commands", rankingService.ExecuteRankCommand)
}
