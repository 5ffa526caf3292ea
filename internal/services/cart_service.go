package services

import (
	"database/sql"
	"errors"

	"expressbuy/internal/domain"
	"expressbuy/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
	Users *repos.UserRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, users *repos.UserRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods, Users: users}
}

// Add puts qty units of the product in the user's cart, creating the cart on first use.
// The line is repriced at the product's current catalog price.
func (s *CartService) Add(userID, productID string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	if _, err := s.Users.ByID(userID); err != nil {
		return nil, missing(err, "User not found")
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return nil, missing(err, "Product not found")
	}
	cart, err := s.Carts.ByUser(userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cart = domain.NewCart(userID)
	case err != nil:
		return nil, err
	}
	cart.Add(p.ID, qty, p.Price)
	return cart, s.save(cart)
}

func (s *CartService) Reduce(userID, productID string) (*domain.Cart, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	if !cart.Reduce(productID) {
		return nil, notFound("Product not found in cart")
	}
	return cart, s.save(cart)
}

func (s *CartService) Remove(userID, productID string) (*domain.Cart, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return nil, notFound("Product not found in cart")
	}
	return cart, s.save(cart)
}

func (s *CartService) Clear(userID string) (*domain.Cart, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return cart, s.save(cart)
}

func (s *CartService) View(userID string) (*domain.Cart, error) {
	return s.cart(userID)
}

func (s *CartService) ListAll() ([]domain.Cart, error) {
	return s.Carts.All()
}

func (s *CartService) cart(userID string) (*domain.Cart, error) {
	cart, err := s.Carts.ByUser(userID)
	if err != nil {
		return nil, missing(err, "Cart not found")
	}
	return cart, nil
}

func (s *CartService) save(cart *domain.Cart) error {
	if err := s.Carts.Save(cart); err != nil {
		if errors.Is(err, repos.ErrStale) {
			return conflict("Cart was modified by another request, please retry")
		}
		return err
	}
	return nil
}
