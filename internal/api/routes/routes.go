package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mrp-api-server/config"
	"mrp-api-server/internal/api/handlers"
	"mrp-api-server/internal/api/middleware"
	"mrp-api-server/internal/auth"
	"mrp-api-server/internal/service"
	"mrp-api-server/internal/socket"
	"mrp-api-server/internal/store"
)

// Deps carries everything the router needs; main builds and injects it.
type Deps struct {
	Cfg           config.Config
	Tokens        *auth.Manager
	Hub           *socket.Hub
	Log           *zap.Logger
	Products      store.ProductStore
	BOMs          store.BOMStore
	WorkCentres   store.WorkCentreStore
	Users         store.UserStore
	Manufacturing *service.ManufacturingService
	WorkOrders    *service.WorkOrderService
	Inventory     *service.InventoryService
	Analytics     *service.AnalyticsService
}

// SetupRouter wires the middleware stack and all route groups.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(d.Cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = d.Cfg.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsCfg))

	productHandler := &handlers.ProductHandler{Products: d.Products}
	bomHandler := &handlers.BOMHandler{BOMs: d.BOMs, Products: d.Products}
	workCentreHandler := &handlers.WorkCentreHandler{WorkCentres: d.WorkCentres}
	manufacturingHandler := &handlers.ManufacturingHandler{Service: d.Manufacturing, Inventory: d.Inventory}
	workOrderHandler := &handlers.WorkOrderHandler{Service: d.WorkOrders}
	inventoryHandler := &handlers.InventoryHandler{Inventory: d.Inventory}
	analyticsHandler := &handlers.AnalyticsHandler{Analytics: d.Analytics}
	userHandler := &handlers.UserHandler{Users: d.Users, Tokens: d.Tokens}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Tokens: d.Tokens, Log: d.Log}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket route (token auth via query parameter)
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === ROUTES WITHOUT AUTHENTICATION ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === PROTECTED ROUTES ===
		// Everything below goes through the Authenticate middleware first.

		// Administration, "admin" role only
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(d.Tokens))
		admin.Use(middleware.Authorize("admin"))
		{
			admin.POST("/users", userHandler.CreateUser)
		}

		// Main business routes, any authenticated role
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate(d.Tokens))
		businessRoutes.Use(middleware.Authorize("admin", "manager", "operator"))
		{
			// Catalog: products and bills of materials
			products := businessRoutes.Group("/products")
			{
				products.GET("/", productHandler.GetAllProducts)
				products.GET("/:id", productHandler.GetProductByID)

				// Catalog writes are for planners, not operators
				catalogWrites := products.Group("/")
				catalogWrites.Use(middleware.Authorize("admin", "manager"))
				{
					catalogWrites.POST("/", productHandler.CreateProduct)
					catalogWrites.DELETE("/:id", productHandler.DeleteProduct)
				}
			}

			boms := businessRoutes.Group("/boms")
			{
				boms.GET("/", bomHandler.GetAllBOMs)
				boms.GET("/:id", bomHandler.GetBOMByID)

				bomWrites := boms.Group("/")
				bomWrites.Use(middleware.Authorize("admin", "manager"))
				{
					bomWrites.POST("/", bomHandler.CreateBOM)
					bomWrites.DELETE("/:id", bomHandler.DeleteBOM)
				}
			}

			workCentres := businessRoutes.Group("/work-centres")
			{
				workCentres.GET("/", workCentreHandler.GetAllWorkCentres)
				workCentres.GET("/:id", workCentreHandler.GetWorkCentreByID)

				wcWrites := workCentres.Group("/")
				wcWrites.Use(middleware.Authorize("admin", "manager"))
				{
					wcWrites.POST("/", workCentreHandler.CreateWorkCentre)
					wcWrites.PUT("/:id", workCentreHandler.UpdateWorkCentre)
					wcWrites.DELETE("/:id", workCentreHandler.DeleteWorkCentre)
				}
			}

			// Manufacturing orders
			manufacturingOrders := businessRoutes.Group("/manufacturing-orders")
			{
				manufacturingOrders.GET("/", manufacturingHandler.GetAllOrders)
				manufacturingOrders.GET("/:id", manufacturingHandler.GetOrderByID)
				manufacturingOrders.GET("/:id/ledger", manufacturingHandler.GetOrderLedger)
				manufacturingOrders.POST("/:id/complete", manufacturingHandler.CompleteOrder)
				manufacturingOrders.POST("/:id/start", manufacturingHandler.StartProcess)

				moWrites := manufacturingOrders.Group("/")
				moWrites.Use(middleware.Authorize("admin", "manager"))
				{
					moWrites.POST("/", manufacturingHandler.CreateOrder)
					moWrites.POST("/:id/cancel", manufacturingHandler.CancelOrder)
					moWrites.DELETE("/:id", manufacturingHandler.DeleteOrder)
				}
			}

			// Work orders: operators advance these from the shop floor
			workOrders := businessRoutes.Group("/work-orders")
			{
				workOrders.GET("/", workOrderHandler.GetWorkOrders)
				workOrders.GET("/:id", workOrderHandler.GetWorkOrderByID)
				workOrders.PATCH("/:id/status", workOrderHandler.UpdateStatus)
			}

			// Inventory views over the stock ledger
			inventory := businessRoutes.Group("/inventory")
			{
				inventory.GET("/stock", inventoryHandler.GetStockLevels)
				inventory.GET("/ledger", inventoryHandler.GetLedgerHistory)
			}

			// Dashboard KPIs, planners only
			analytics := businessRoutes.Group("/analytics")
			analytics.Use(middleware.Authorize("admin", "manager"))
			{
				analytics.GET("/overview", analyticsHandler.GetStatusOverview)
				analytics.GET("/throughput", analyticsHandler.GetThroughput)
				analytics.GET("/cycle-time", analyticsHandler.GetCycleTime)
			}
		}
	}

	return router
}
