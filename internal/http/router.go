package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	intconfig "rutabus/internal/config"
	h "rutabus/internal/http/handlers"
	"rutabus/internal/http/middleware"
	"rutabus/internal/repositories"
	"rutabus/internal/services"

	"github.com/gin-gonic/gin"
)

// NewRouter wires repositories, services and handlers explicitly; nothing
// reads shared globals.
func NewRouter(env intconfig.Env, conn *sql.DB) *gin.Engine {
	users := repositories.UserRepository{DB: conn}
	routes := repositories.RouteRepository{DB: conn}
	tickets := repositories.TicketRepository{DB: conn}
	payments := repositories.PaymentRepository{DB: conn}

	authSvc := services.AuthService{Users: users, JWTSecret: []byte(env.JWTSecret)}
	routeSvc := services.RouteService{Routes: routes}
	methodSvc := services.PaymentMethodService{Payments: payments}
	ticketSvc := services.TicketService{Tickets: tickets}
	gateway := services.NewSimulatedGateway(env.StageDelay)
	checkoutSvc := services.NewCheckoutService(users, routes, tickets, payments, gateway, env.StoreTimeout)

	authH := h.AuthHandler{Auth: authSvc}
	routeH := h.RouteHandler{Routes: routeSvc}
	methodH := h.PaymentMethodHandler{Methods: methodSvc}
	checkoutH := h.CheckoutHandler{Checkout: checkoutSvc}
	ticketH := h.TicketHandler{
		Tickets: ticketSvc,
		Docs: func(requestID string) services.DocsService {
			return services.DocsService{Tickets: tickets, RequestID: requestID}
		},
	}
	txH := h.TransactionHandler{Payments: payments}
	systemH := h.SystemHandler{DB: conn}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "ruta no encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	requireAuth := middleware.RequireAuth([]byte(env.JWTSecret))
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		api.GET("/health", systemH.Health)
		api.GET("/db-check", systemH.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.GET("/me", requireAuth, authH.Me)

		busRoutes := api.Group("/routes")
		busRoutes.GET("", routeH.List)
		busRoutes.GET("/:id", routeH.ByID)
		busRoutes.POST("", requireAuth, requireAdmin, routeH.Create)
		busRoutes.POST("/seed", requireAuth, requireAdmin, routeH.Seed)
		busRoutes.PUT("/:id", requireAuth, requireAdmin, routeH.Update)

		methods := api.Group("/payment-methods", requireAuth)
		methods.GET("", methodH.List)
		methods.POST("", methodH.Save)
		methods.DELETE("/:id", methodH.Delete)
		methods.PUT("/:id/default", methodH.SetDefault)

		checkout := api.Group("/checkout", requireAuth)
		checkout.POST("", checkoutH.Initialize)
		checkout.GET("/:id", checkoutH.Get)
		checkout.PUT("/:id/passenger", checkoutH.SetPassenger)
		checkout.PUT("/:id/payment-method", checkoutH.SelectPaymentMethod)
		checkout.POST("/:id/confirm", checkoutH.Confirm)

		ticketGroup := api.Group("/tickets", requireAuth)
		ticketGroup.GET("", ticketH.ListOwn)
		ticketGroup.GET("/:id", ticketH.ByID)
		ticketGroup.GET("/:id/pdf", ticketH.ETicketPDF)

		api.GET("/transactions", requireAuth, txH.ListOwn)

		admin := api.Group("/admin", requireAuth, requireAdmin)
		admin.GET("/tickets", ticketH.ListAll)
		admin.PUT("/tickets/:id/use", ticketH.MarkUsed)
		admin.GET("/transactions", txH.ListAll)
	}

	return r
}
