package handlers

import (
	"github.com/jmoiron/sqlx"

	"expressbuy/internal/config"
	"expressbuy/internal/events"
	"expressbuy/internal/payment"
	"expressbuy/internal/repos"
	"expressbuy/internal/services"
)

type Deps struct {
	Tokens *services.TokenService

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
}

// NewDeps wires repos and services over db. The gateway, publisher, image store and
// outcome recorder are passed in so tests can substitute them.
func NewDeps(db *sqlx.DB, cfg config.Config, gw payment.Gateway, pub events.Publisher,
	images services.ImageStore, outcomes services.OutcomeRecorder) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	txnRepo := repos.NewTransactionRepo(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(userRepo, tokens)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, images)
	cartSvc := services.NewCartService(cartRepo, prodRepo, userRepo)
	checkoutSvc := services.NewCheckoutService(userRepo, cartRepo, txnRepo, gw, pub, outcomes)

	return &Deps{
		Tokens:          tokens,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
	}
}
