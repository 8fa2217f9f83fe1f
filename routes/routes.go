package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"checkout-service/cache"
	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/middleware"
	"checkout-service/payment"
	"checkout-service/ratelimit"
	"checkout-service/repository"
	"checkout-service/services"
)

// Register wires repositories, services and controllers onto the
// router. The Redis client, database handle and notifier are process
// singletons constructed once in main and injected here.
func Register(
	r *gin.Engine,
	db *gorm.DB,
	redisClient *redis.Client,
	notifier services.Notifier,
	cfg config.Config,
) {
	store := cache.New(redisClient, cfg.CacheTagSlack)

	products := repository.NewGormProductRepository(db)
	orders := repository.NewGormOrderRepository(db)
	settings := repository.NewGormSettingsRepository(db, store)
	sessions := repository.NewRedisSessionRepository(store, cfg.SessionTTL)
	carts := repository.NewRedisCartRepository(store, cfg.CartTTL)

	gateways := payment.NewRegistry()
	gateways.Register(payment.MethodStripe, payment.NewStripeGateway(cfg.StripeSecretKey, "usd"))
	gateways.Register(payment.MethodRazorpay, payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret))

	materializer := services.NewOrderMaterializer(products, orders)
	pricer := services.NewPricer(settings)
	checkoutSvc := services.NewCheckoutService(
		products, sessions, carts, pricer, gateways, materializer, notifier, cfg.SessionTTL)
	cartSvc := services.NewCartService(carts, products, store)

	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc, orders)
	cartCtrl := controllers.NewCartController(cartSvc)

	profiles := make(map[string]ratelimit.Profile, len(cfg.RateLimits))
	for name, p := range cfg.RateLimits {
		profiles[name] = ratelimit.Profile{Window: p.Window, MaxRequests: p.MaxRequests}
	}
	limiters := ratelimit.Profiles(redisClient, profiles)

	r.Use(middleware.Identity())
	r.Use(middleware.RateLimit(limiters["api"]))

	cart := r.Group("/cart")
	cart.Use(middleware.RequireIdentity())
	{
		cart.GET("/", cartCtrl.GetCart)
		cart.POST("/add", cartCtrl.AddItem)
		cart.DELETE("/clear", cartCtrl.ClearCart)
		cart.POST("/merge", cartCtrl.MergeCart)
	}

	checkout := r.Group("/checkout")
	checkout.Use(middleware.RequireIdentity())
	checkout.Use(middleware.RateLimit(limiters["auth"]))
	{
		checkout.POST("/", checkoutCtrl.InitiateCheckout)
		checkout.POST("/verify", checkoutCtrl.VerifyPayment)
	}

	r.GET("/orders/:id", middleware.RequireIdentity(), checkoutCtrl.GetOrder)
}
