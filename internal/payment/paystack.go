package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Gateway is the external payment provider checkout talks to.
type Gateway interface {
	Initialize(ctx context.Context, amount decimal.Decimal, email string) (Authorization, error)
	Verify(ctx context.Context, reference string) (Verification, error)
}

// Authorization is what the customer needs to complete payment on the provider's page.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Verification struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Paid      bool   `json:"-"`
}

type Paystack struct {
	BaseURL     string
	Secret      string
	CallbackURL string
	Timeout     time.Duration
}

func NewPaystack(baseURL, secret, callbackURL string, timeout time.Duration) *Paystack {
	return &Paystack{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Secret:      secret,
		CallbackURL: callbackURL,
		Timeout:     timeout,
	}
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Initialize starts a transaction. Paystack takes the amount in the minor unit (kobo).
func (p *Paystack) Initialize(ctx context.Context, amount decimal.Decimal, email string) (Authorization, error) {
	body := map[string]any{
		"email":  email,
		"amount": amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
	}
	if p.CallbackURL != "" {
		body["callback_url"] = p.CallbackURL
	}
	var out envelope[Authorization]
	if err := p.do(ctx, fiber.Post(p.BaseURL+"/transaction/initialize").JSON(body), &out); err != nil {
		return Authorization{}, err
	}
	if !out.Status {
		return Authorization{}, fmt.Errorf("paystack initialize: %s", out.Message)
	}
	return out.Data, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (Verification, error) {
	var out envelope[Verification]
	a := fiber.Get(p.BaseURL + "/transaction/verify/" + url.PathEscape(reference))
	if err := p.do(ctx, a, &out); err != nil {
		return Verification{}, err
	}
	if !out.Status {
		return Verification{}, fmt.Errorf("paystack verify: %s", out.Message)
	}
	out.Data.Paid = out.Data.Status == "success"
	if out.Data.Reference == "" {
		out.Data.Reference = reference
	}
	return out.Data, nil
}

func (p *Paystack) do(ctx context.Context, a *fiber.Agent, v any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}
	timeout := p.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	a.Set(fiber.HeaderAuthorization, "Bearer "+p.Secret)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout > 0 {
		a.Timeout(timeout)
	}
	code, body, errs := a.Struct(v)
	if len(errs) > 0 {
		return fmt.Errorf("paystack request: %w", errors.Join(errs...))
	}
	if code >= 300 {
		return fmt.Errorf("paystack returned %d: %s", code, truncate(body, 200))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
