package giftcards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	giftcardRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/giftcard"
)

// ApplyRequest запрос на применение баланса карты к бронированию
type ApplyRequest struct {
	VendorID   int64
	Currency   string
	Code       string
	DepositDue int64
	BalanceDue int64
}

// Service сервис подарочных карт
// Все методы рассчитаны на вызов внутри транзакции вызывающей стороны
type Service struct {
	repo         GiftCardRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса подарочных карт
func NewService(repo GiftCardRepository, timeProvider TimeProvider, logger Logger) *Service {
	return &Service{
		repo:         repo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// SettleRejected сохраняет статус EXPIRED или DEPLETED карты, отклоненной в Apply
// Вызывается вне транзакции бронирования, после её отката
func (s *Service) SettleRejected(ctx context.Context, rawCode string) error {
	code := NormalizeCode(rawCode)
	if code == "" {
		return nil
	}

	card, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, giftcardRepo.ErrGiftCardNotFound) {
			return nil
		}
		s.logger.Error("SettleRejected: failed to get gift card code=%s: %v", code, err)
		return fmt.Errorf("%w: SettleRejected - get gift card: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	var next domain.GiftCardStatus
	switch {
	case card.ExpiresAt != nil && !card.ExpiresAt.After(now):
		next = domain.GiftCardExpired
	case card.Status == domain.GiftCardActive && card.Balance <= 0:
		next = domain.GiftCardDepleted
	default:
		return nil
	}
	if card.Status == next {
		return nil
	}

	card.Status = next
	card.UpdatedAt = now
	if err := s.repo.Update(ctx, card); err != nil {
		s.logger.Error("SettleRejected: failed to mark gift card id=%d %s: %v", card.ID, next, err)
		return fmt.Errorf("%w: SettleRejected - update status: %v", ErrInternal, err)
	}
	s.logger.Info("SettleRejected: gift card id=%d marked %s", card.ID, next)
	return nil
}

// NormalizeCode убирает все символы кроме букв и цифр и приводит к верхнему регистру
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Apply списывает баланс карты в счет депозита, затем остатка
// appliedDeposit = min(balance, depositDue), appliedBalance = min(balance - appliedDeposit, balanceDue).
// Списание фиксируется методом Redeem после создания бронирования.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*domain.GiftCardApplication, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	card, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, giftcardRepo.ErrGiftCardNotFound) {
			s.logger.Warn("Apply: gift card code=%s not found", code)
			return nil, ErrGiftCardNotFound
		}
		s.logger.Error("Apply: failed to get gift card code=%s: %v", code, err)
		return nil, fmt.Errorf("%w: Apply - get gift card: %v", ErrInternal, err)
	}

	if card.VendorID != req.VendorID {
		s.logger.Warn("Apply: gift card id=%d belongs to vendor=%d, not %d", card.ID, card.VendorID, req.VendorID)
		return nil, fmt.Errorf("%w: card is not valid for this vendor", ErrGiftCardUnusable)
	}
	if !strings.EqualFold(card.Currency, req.Currency) {
		return nil, fmt.Errorf("%w: card currency %s does not match %s", ErrGiftCardUnusable, card.Currency, req.Currency)
	}

	now := s.timeProvider.Now()

	// Отказ откатывает транзакцию вызывающего кода, статус карты сохраняет SettleRejected
	if card.ExpiresAt != nil && !card.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: card has expired", ErrGiftCardUnusable)
	}

	if card.Status != domain.GiftCardActive {
		return nil, fmt.Errorf("%w: card is %s", ErrGiftCardUnusable, card.Status)
	}

	if card.Balance <= 0 {
		return nil, fmt.Errorf("%w: card has no balance", ErrGiftCardUnusable)
	}

	application := Compute(card.Balance, req.DepositDue, req.BalanceDue)
	application.GiftCardID = card.ID

	if application.TotalApplied() > 0 {
		card.Balance = application.CardBalance
		if card.Balance == 0 {
			card.Status = domain.GiftCardDepleted
		}
		card.UpdatedAt = now
		if err := s.repo.Update(ctx, card); err != nil {
			s.logger.Error("Apply: failed to debit gift card id=%d: %v", card.ID, err)
			return nil, fmt.Errorf("%w: Apply - debit card: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Apply: gift card id=%d applied deposit=%d balance=%d, card balance=%d",
		card.ID, application.AppliedDeposit, application.AppliedBalance, application.CardBalance)
	return application, nil
}

// Compute считает применение баланса карты без побочных эффектов
func Compute(cardBalance, depositDue, balanceDue int64) *domain.GiftCardApplication {
	if cardBalance < 0 {
		cardBalance = 0
	}
	appliedDeposit := min(cardBalance, max(depositDue, 0))
	appliedBalance := min(cardBalance-appliedDeposit, max(balanceDue, 0))

	return &domain.GiftCardApplication{
		AppliedDeposit:   appliedDeposit,
		AppliedBalance:   appliedBalance,
		RemainingDeposit: depositDue - appliedDeposit,
		RemainingBalance: balanceDue - appliedBalance,
		CardBalance:      cardBalance - appliedDeposit - appliedBalance,
	}
}

// Redeem фиксирует списание с карты за бронированием
func (s *Service) Redeem(ctx context.Context, application *domain.GiftCardApplication, bookingID int64) error {
	if application == nil || application.TotalApplied() <= 0 {
		return nil
	}

	_, err := s.repo.CreateRedemption(ctx, &domain.GiftCardRedemption{
		GiftCardID: application.GiftCardID,
		BookingID:  bookingID,
		Amount:     application.TotalApplied(),
		CreatedAt:  s.timeProvider.Now(),
	})
	if err != nil {
		s.logger.Error("Redeem: failed to record redemption for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Redeem - create redemption: %v", ErrInternal, err)
	}

	return nil
}

// Refund возвращает на карты все невозвращенные списания бронирования
// Карта снова становится ACTIVE, если она не CANCELLED и не EXPIRED. Возвращает сумму возврата.
func (s *Service) Refund(ctx context.Context, bookingID int64) (int64, error) {
	redemptions, err := s.repo.ListUnrefundedRedemptions(ctx, bookingID)
	if err != nil {
		s.logger.Error("Refund: failed to list redemptions for booking id=%d: %v", bookingID, err)
		return 0, fmt.Errorf("%w: Refund - list redemptions: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	var total int64

	for _, rd := range redemptions {
		card, err := s.repo.GetByID(ctx, rd.GiftCardID)
		if err != nil {
			s.logger.Error("Refund: failed to get gift card id=%d: %v", rd.GiftCardID, err)
			return 0, fmt.Errorf("%w: Refund - get gift card: %v", ErrInternal, err)
		}

		card.Balance += rd.Amount
		if card.Status != domain.GiftCardCancelled && card.Status != domain.GiftCardExpired {
			card.Status = domain.GiftCardActive
		}
		card.UpdatedAt = now

		if err := s.repo.Update(ctx, card); err != nil {
			s.logger.Error("Refund: failed to credit gift card id=%d: %v", card.ID, err)
			return 0, fmt.Errorf("%w: Refund - credit card: %v", ErrInternal, err)
		}
		if err := s.repo.MarkRedemptionRefunded(ctx, rd.ID, now); err != nil {
			s.logger.Error("Refund: failed to mark redemption id=%d refunded: %v", rd.ID, err)
			return 0, fmt.Errorf("%w: Refund - mark refunded: %v", ErrInternal, err)
		}
		total += rd.Amount
	}

	if total > 0 {
		s.logger.Info("Refund: refunded %d to gift cards for booking id=%d", total, bookingID)
	}
	return total, nil
}

// Activate переводит оплаченную карту из PENDING_PAYMENT в ACTIVE
// Повторная активация не ошибка
func (s *Service) Activate(ctx context.Context, giftCardID int64) error {
	card, err := s.repo.GetByID(ctx, giftCardID)
	if err != nil {
		if errors.Is(err, giftcardRepo.ErrGiftCardNotFound) {
			return ErrGiftCardNotFound
		}
		return fmt.Errorf("%w: Activate - get gift card: %v", ErrInternal, err)
	}

	if card.Status != domain.GiftCardPendingPayment {
		s.logger.Info("Activate: gift card id=%d already in status=%s", card.ID, card.Status)
		return nil
	}

	card.Status = domain.GiftCardActive
	card.UpdatedAt = s.timeProvider.Now()
	if err := s.repo.Update(ctx, card); err != nil {
		return fmt.Errorf("%w: Activate - update card: %v", ErrInternal, err)
	}

	s.logger.Info("Activate: gift card id=%d activated", card.ID)
	return nil
}
