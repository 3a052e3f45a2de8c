package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coffee-platform/internal/config"
	"coffee-platform/internal/handlers"
	"coffee-platform/internal/identity"
	"coffee-platform/internal/mail"
	"coffee-platform/internal/middleware"
	"coffee-platform/internal/payment"
	"coffee-platform/internal/storage"
	"coffee-platform/internal/store"
	ws "coffee-platform/internal/websocket"
)

func main() {
	log.Println("Starting creator support server...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	st, err := store.Connect(cfg.DSN)
	if err != nil {
		log.Fatal("cannot connect to database:", err)
	}
	defer st.Close()
	log.Println("Successfully connected to PostgreSQL!")

	hub := ws.NewHub()
	go hub.Run()

	resolver := identity.NewResolver(st)
	provider := payment.NewRazorpayProvider(cfg.ProviderTimeoutSeconds)
	paymentService := payment.NewService(st, resolver, provider, hub, payment.Config{
		Currency:       cfg.Currency,
		FallbackSecret: cfg.RazorpayKeySecret,
		AllowFallback:  cfg.RazorpayAllowFallback,
	})

	mailer := mail.NewSMTPSender(cfg)
	uploader := storage.NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)

	authHandler := handlers.NewAuthHandler(st, resolver, mailer, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(st, resolver)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	uploadHandler := handlers.NewUploadHandler(uploader)
	wsHandler := handlers.NewWebSocketHandler(st, hub)

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/request-otp", authHandler.RequestOtp)
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password/request-otp", authHandler.RequestPasswordOtp)
			auth.POST("/forgot-password/reset", authHandler.ResetPassword)
		}

		// Public payment pipeline and page data.
		api.POST("/payments/initiate", paymentHandler.Initiate)
		api.POST("/payments/verify", paymentHandler.Verify)
		api.GET("/supporters/:identifier", paymentHandler.TopSupporters)
		api.GET("/users/:identifier", profileHandler.GetPublicProfile)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			protected.GET("/me", profileHandler.GetMe)
			protected.PUT("/me", profileHandler.UpdateProfile)
			protected.GET("/me/payments", profileHandler.GetMyPayments)
			protected.POST("/upload", uploadHandler.Upload)
		}
	}

	r.GET("/ws/widget/:token", wsHandler.ServeWs)

	addr := ":" + cfg.Port
	log.Println("Server starting on http://localhost" + addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("could not start server:", err)
	}
}
