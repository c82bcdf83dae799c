package giftcards

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// GiftCardRepository интерфейс репозитория подарочных карт
type GiftCardRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.GiftCard, error)
	GetByID(ctx context.Context, id int64) (*domain.GiftCard, error)
	Update(ctx context.Context, card *domain.GiftCard) error
	CreateRedemption(ctx context.Context, redemption *domain.GiftCardRedemption) (*domain.GiftCardRedemption, error)
	ListUnrefundedRedemptions(ctx context.Context, bookingID int64) ([]*domain.GiftCardRedemption, error)
	MarkRedemptionRefunded(ctx context.Context, id int64, refundedAt time.Time) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
