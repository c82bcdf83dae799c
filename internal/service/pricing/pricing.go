package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

var (
	basisPoints = decimal.NewFromInt(domain.BasisPointsDenominator)
	hundred     = decimal.NewFromInt(100)
)

// Quote итоговая цена бронирования в минимальных единицах валюты
type Quote struct {
	Price   int64
	Deposit int64
	Balance int64
}

// ApplyMarkup применяет наценку платформы в базисных пунктах
// bps ограничивается диапазоном [0, 5000], результат округляется и не меньше 1.
func ApplyMarkup(amount int64, bps int) int64 {
	bps = clamp(bps, 0, domain.MaxPlatformMarkupBps)

	factor := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(bps)).Div(basisPoints))
	marked := decimal.NewFromInt(amount).Mul(factor).Round(0).IntPart()
	if marked < 1 {
		return 1
	}
	return marked
}

// ResolveDepositPercent nil означает полную предоплату, значение ограничивается [0, 100]
func ResolveDepositPercent(percent *int) int {
	if percent == nil {
		return domain.DefaultDepositPercent
	}
	return clamp(*percent, 0, 100)
}

// ComputeDeposit депозит = min(price, floor(price * percent / 100))
func ComputeDeposit(price int64, percent int) int64 {
	if price <= 0 {
		return 0
	}
	percent = clamp(percent, 0, 100)

	deposit := decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(hundred).
		Floor().
		IntPart()
	if deposit > price {
		return price
	}
	return deposit
}

// Calculate считает цену с наценкой, депозит и остаток
// collectDeposit=false (ручное бронирование без предоплаты) дает нулевой депозит
func Calculate(service *domain.Service, markupBps int, collectDeposit bool) Quote {
	price := ApplyMarkup(service.BasePrice, markupBps)

	var deposit int64
	if collectDeposit {
		deposit = ComputeDeposit(price, ResolveDepositPercent(service.DepositPercent))
	}

	return Quote{
		Price:   price,
		Deposit: deposit,
		Balance: price - deposit,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
