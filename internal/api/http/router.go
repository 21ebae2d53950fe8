package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/http/handlers"
	"github.com/gavelworks/auction-service/internal/auth"
	"github.com/gavelworks/auction-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Auctions       *handlers.AuctionsHandler
	Lots           *handlers.LotsHandler
	Activity       *handlers.ActivityHandler
	Reports        *handlers.ReportsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	auctions := api.Group("/auctions")
	auctions.Get("/", cfg.Auctions.List)
	auctions.Get("/:auctionId", cfg.Auctions.Get)
	auctions.Get("/:auctionId/lots", cfg.Lots.List)
	auctions.Get("/:auctionId/lots/:lotId", cfg.Lots.Get)
	auctions.Get("/:auctionId/lots/:lotId/bids", cfg.Lots.Bids)

	sellers := auctions.Group("", cfg.AuthMiddleware.Handle,
		auth.RequireRoles(domain.RoleSeller, domain.RoleSystemAdmin))
	sellers.Post("/", cfg.Auctions.Create)
	sellers.Put("/:auctionId", cfg.Auctions.Update)
	sellers.Patch("/:auctionId/status", cfg.Auctions.ChangeStatus)
	sellers.Delete("/:auctionId", cfg.Auctions.Delete)
	sellers.Post("/:auctionId/lots", cfg.Lots.Create)
	sellers.Put("/:auctionId/lots/:lotId", cfg.Lots.Update)
	sellers.Delete("/:auctionId/lots/:lotId", cfg.Lots.Delete)

	buyers := auctions.Group("", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleBuyer))
	buyers.Post("/:auctionId/lots/:lotId/bids", cfg.Lots.PlaceBid)

	my := api.Group("/my", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	my.Get("/activity", cfg.Activity.BuyerActivity)
	my.Get("/listings", cfg.Activity.SellerListings)
	my.Get("/auctions", cfg.Activity.SellerAuctions)

	reports := api.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	reports.Get("/lots/max-price-difference", cfg.Reports.MaxPriceDifference)
	reports.Get("/lots/most-expensive-sold", cfg.Reports.MostExpensiveSold)
	reports.Get("/lots/top-sold", cfg.Reports.TopSold)
	reports.Get("/lots/for-sale", cfg.Reports.ItemsForSale)
	reports.Get("/auctions/most-sold-lots", cfg.Reports.MostSoldLots)
	reports.Get("/auctions/without-sales", cfg.Reports.AuctionsWithoutSales)
	reports.Get("/buyers", cfg.Reports.BuyersByAuction)
	reports.Get("/sellers/sales", cfg.Reports.SellerSales)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:userId/status", cfg.Admin.SetUserStatus)
	admin.Put("/users/:userId/roles", cfg.Admin.SetUserRoles)
}
