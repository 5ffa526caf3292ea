package handlers

import "github.com/gofiber/fiber/v2"

// Mount registers the API on r (normally the /api/v1 group). loginGuards run in
// front of the credential endpoints, typically a rate limiter.
func (d *Deps) Mount(r fiber.Router, loginGuards ...fiber.Handler) {
	user := RequireUser(d.Tokens)
	admin := RequireAdmin(d.Tokens)
	guarded := func(h fiber.Handler) []fiber.Handler { return append(append([]fiber.Handler{}, loginGuards...), h) }

	// Onboarding
	r.Post("/register", guarded(d.AuthHandler.Register)...)
	r.Post("/login", guarded(d.AuthHandler.Login)...)
	r.Post("/admin/register", guarded(d.AuthHandler.RegisterAdminBootstrap)...)
	r.Post("/admin", admin, d.AuthHandler.RegisterAdmin)

	// Catalog
	r.Post("/category", admin, d.CategoryHandler.Create)
	r.Get("/allCategories", user, d.CategoryHandler.List)
	r.Get("/category/:categoryId", user, d.CategoryHandler.Get)
	r.Delete("/category/:categoryId", admin, d.CategoryHandler.Delete)

	r.Post("/product/:categoryId", admin, d.ProductHandler.Create)
	r.Get("/allProducts", user, d.ProductHandler.List)
	r.Get("/product/:productId", user, d.ProductHandler.Get)
	r.Delete("/product/delete/:productId/:categoryId", admin, d.ProductHandler.Delete)
	r.Get("/products/export", admin, d.ProductHandler.Export)

	// Cart
	r.Post("/cart/:productId", user, d.CartHandler.Add)
	r.Get("/cart", user, d.CartHandler.View)
	r.Get("/allCart", user, d.CartHandler.ListAll)
	r.Patch("/cart/reduce/:productId", user, d.CartHandler.Reduce)
	r.Delete("/cart/delete/:productId", user, d.CartHandler.Remove)
	r.Delete("/clearCart", user, d.CartHandler.Clear)

	// Checkout
	r.Post("/payment/initialize", user, d.CheckoutHandler.Initialize)
	r.Post("/checkout", user, d.CheckoutHandler.Finalize)
	r.Get("/transactions", user, d.CheckoutHandler.History)
}
