package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/la-fiesta/storefront/internal/domain"
)

// ErrEmptyCart signals there is nothing to send; callers surface an
// empty-cart notice instead of opening the messaging endpoint.
var ErrEmptyCart = errors.New("order service: cart is empty")

const (
	defaultOrderLocale   = "es-GT"
	defaultCurrency      = "Q"
	whatsappBaseURL      = "https://wa.me/"
	orderHeaderFormat    = "Pedido desde %s:"
	deliveryDetailPrompt = "Datos de entrega: (escribe aquí tu nombre, dirección y teléfono)"
)

// OrderServiceDeps carries shop policy into the order formatter.
type OrderServiceDeps struct {
	StoreName      string
	TaxRate        float64
	Locale         string
	CurrencySymbol string
	// WhatsAppPhone in international format without the plus sign; empty
	// targets the generic share endpoint.
	WhatsAppPhone string
}

type orderService struct {
	storeName string
	taxRate   float64
	symbol    string
	phone     string
	printer   *message.Printer
}

// NewOrderService constructs the order formatter.
func NewOrderService(deps OrderServiceDeps) OrderService {
	locale := strings.TrimSpace(deps.Locale)
	if locale == "" {
		locale = defaultOrderLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(defaultOrderLocale)
	}

	symbol := deps.CurrencySymbol
	if symbol == "" {
		symbol = defaultCurrency
	}
	storeName := strings.TrimSpace(deps.StoreName)
	if storeName == "" {
		storeName = "la tienda"
	}

	return &orderService{
		storeName: storeName,
		taxRate:   deps.TaxRate,
		symbol:    symbol,
		phone:     strings.TrimSpace(deps.WhatsAppPhone),
		printer:   message.NewPrinter(tag),
	}
}

// BuildOrder renders the cart into the human-readable order text and the
// messaging deep-link carrying it.
func (s *orderService) BuildOrder(_ context.Context, cart domain.Cart) (Order, error) {
	if len(cart.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	totals := cart.Totals(s.taxRate)

	var b strings.Builder
	fmt.Fprintf(&b, orderHeaderFormat, s.storeName)
	b.WriteString("\n\n")
	for _, line := range cart.Lines {
		lineTotal := domain.Round2(line.Product.EffectivePrice() * float64(line.Quantity))
		fmt.Fprintf(&b, "%d x %s - %s\n", line.Quantity, line.Product.Name, s.formatMoney(lineTotal))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", s.formatMoney(totals.Subtotal))
	fmt.Fprintf(&b, "Impuestos: %s\n", s.formatMoney(totals.Tax))
	fmt.Fprintf(&b, "Total: %s\n", s.formatMoney(totals.Total))
	b.WriteString("\n")
	b.WriteString(deliveryDetailPrompt)

	text := b.String()
	return Order{
		Text:   text,
		Link:   s.link(text),
		Totals: totals,
	}, nil
}

func (s *orderService) formatMoney(v float64) string {
	return s.printer.Sprintf("%s%.2f", s.symbol, v)
}

// link builds the messaging deep-link. The endpoint itself is opaque; it just
// accepts a percent-encoded text blob.
func (s *orderService) link(text string) string {
	return whatsappBaseURL + s.phone + "?text=" + percentEncode(text)
}

// percentEncode escapes like encodeURIComponent: spaces become %20, not "+".
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
