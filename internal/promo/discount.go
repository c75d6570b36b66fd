package promo

import (
	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/pkg/upstream"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateDiscount computes the cart-level discount in cents for a promo
// definition against a subtotal. The minimum-checkout threshold only gates
// fixed-amount promos; percentage promos scale with the subtotal and carry
// their own cap instead. Kinds with no cart discount yield zero. The result
// never exceeds the subtotal.
func CalculateDiscount(def upstream.PromoDefinition, subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}

	var discount int64
	switch def.Kind {
	case upstream.PromoKindFixed:
		if def.MinimumCheckoutCents > 0 && subtotalCents < def.MinimumCheckoutCents {
			return 0
		}
		discount = def.OfferAmountCents
	case upstream.PromoKindPercentage:
		// Integer cents in, integer cents out. The fractional part is
		// dropped in the customer's favor on the charge side.
		raw := decimal.NewFromInt(subtotalCents).Mul(def.OfferPercent).Div(oneHundred)
		discount = raw.Floor().IntPart()
		if def.UptoCents > 0 && discount > def.UptoCents {
			discount = def.UptoCents
		}
	case upstream.PromoKindLoyaltyPoints:
		// Points are redeemed through the wallet, not as a cart discount.
		return 0
	default:
		return 0
	}

	if discount < 0 {
		return 0
	}
	if discount > subtotalCents {
		return subtotalCents
	}
	return discount
}
