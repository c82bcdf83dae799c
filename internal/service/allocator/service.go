package allocator

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request кандидат на занятие ресурса
type Request struct {
	VendorID        int64
	ServiceID       int64
	Start           time.Time
	End             time.Time
	RequestedSeatID *int64
	// ExcludeBookingID исключает собственное бронирование при переносе
	ExcludeBookingID *int64
}

// Allocation выбранный ресурс
// SeatID == nil означает эксклюзивность на уровне вендора (нет подходящих мест)
type Allocation struct {
	SeatID  *int64
	StaffID *int64
}

// Service распределитель мест
//
// Вызывается внутри той же транзакции, что и запись бронирования:
// чтение пересечений, подсчет и вставка должны быть сериализованы.
type Service struct {
	bookingRepo BookingRepository
	seatRepo    SeatRepository
	logger      Logger
}

// NewService создает новый экземпляр распределителя
func NewService(bookingRepo BookingRepository, seatRepo SeatRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		seatRepo:    seatRepo,
		logger:      logger,
	}
}

// Allocate проверяет, что слот можно занять, и выбирает место
//
//  1. Нет активных подходящих мест: вендор вмещает одно бронирование, любое пересечение отказ.
//  2. Есть места: пересечение с бронированием без места (legacy) отказ.
//  3. Место свободно, если активных пересечений на нем меньше вместимости.
//  4. Запрошенное место должно быть в списке и свободно, иначе берется первое свободное по дате создания.
func (s *Service) Allocate(ctx context.Context, req Request) (*Allocation, error) {
	overlapping, err := s.bookingRepo.ListActiveOverlapping(ctx, domain.OverlapQuery{
		VendorID:         req.VendorID,
		Start:            req.Start,
		End:              req.End,
		ExcludeBookingID: req.ExcludeBookingID,
	})
	if err != nil {
		s.logger.Error("Allocate: failed to list overlapping bookings for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: Allocate - list overlapping: %v", ErrInternal, err)
	}

	seats, err := s.seatRepo.ListEligibleActive(ctx, req.VendorID, req.ServiceID)
	if err != nil {
		s.logger.Error("Allocate: failed to list seats for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: Allocate - list seats: %v", ErrInternal, err)
	}

	if len(seats) == 0 {
		if len(overlapping) > 0 {
			s.logger.Warn("Allocate: vendor=%d already booked at %s", req.VendorID, req.Start.Format(time.RFC3339))
			return nil, ErrSlotUnavailable
		}
		return &Allocation{}, nil
	}

	occupied := make(map[int64]int, len(seats))
	for _, b := range overlapping {
		if b.SeatID == nil {
			s.logger.Warn("Allocate: vendor=%d has seatless booking id=%d overlapping %s",
				req.VendorID, b.ID, req.Start.Format(time.RFC3339))
			return nil, ErrSlotUnavailable
		}
		occupied[*b.SeatID]++
	}

	if req.RequestedSeatID != nil {
		for _, seat := range seats {
			if seat.ID != *req.RequestedSeatID {
				continue
			}
			if occupied[seat.ID] >= seat.EffectiveCapacity() {
				s.logger.Warn("Allocate: seat id=%d is at capacity", seat.ID)
				return nil, ErrSeatAtCapacity
			}
			return allocationFor(seat), nil
		}
		s.logger.Warn("Allocate: seat id=%d is not eligible for service=%d", *req.RequestedSeatID, req.ServiceID)
		return nil, ErrSeatNotEligible
	}

	for _, seat := range seats {
		if occupied[seat.ID] < seat.EffectiveCapacity() {
			return allocationFor(seat), nil
		}
	}

	s.logger.Warn("Allocate: no free seats for vendor=%d at %s", req.VendorID, req.Start.Format(time.RFC3339))
	return nil, ErrNoSeatsAvailable
}

func allocationFor(seat *domain.Seat) *Allocation {
	seatID := seat.ID
	return &Allocation{SeatID: &seatID, StaffID: seat.StaffID}
}
