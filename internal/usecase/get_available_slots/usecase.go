package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
)

// UseCase use case для получения доступных слотов услуги
type UseCase struct {
	catalogRepo      CatalogRepository
	availabilityRepo AvailabilityRepository
	timeProvider     TimeProvider
	defaultDays      int
	maxDays          int
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	availabilityRepo AvailabilityRepository,
	timeProvider TimeProvider,
	defaultDays int,
	maxDays int,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	if defaultDays <= 0 || defaultDays > maxDays {
		defaultDays = maxDays
	}
	return &UseCase{
		catalogRepo:      catalogRepo,
		availabilityRepo: availabilityRepo,
		timeProvider:     timeProvider,
		defaultDays:      defaultDays,
		maxDays:          maxDays,
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, days=%d", req.ServiceID, req.Days)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем услугу и вендора
	service, vendor, err := uc.loadBookable(ctx, "GetAvailableSlots", req.ServiceID)
	if err != nil {
		return nil, err
	}

	// 4. Определяем диапазон
	startDate := now
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	days := req.Days
	if days == 0 {
		days = uc.defaultDays
	}

	// 5. Генерируем слоты
	slots, err := uc.generate(ctx, "GetAvailableSlots", service, startDate, days, now)
	if err != nil {
		return nil, err
	}

	r := availability.Range(startDate, days)
	uc.logger.Info("GetAvailableSlots: generated %d slots for service=%d, vendor=%d, range=[%s, %s)",
		len(slots), service.ID, vendor.ID, r.Start.Format(domain.DateFormat), r.End.Format(domain.DateFormat))

	return &Response{
		ServiceID:       service.ID,
		VendorID:        vendor.ID,
		RangeStart:      r.Start,
		RangeEnd:        r.End,
		DurationMinutes: service.DurationMinutes,
		BufferMinutes:   service.BufferMinutes,
		Slots:           slots,
	}, nil
}

// SlotsForDay возвращает слоты услуги на сутки (UTC), содержащие момент day
// Используется для повторной проверки выбранного слота при создании и переносе бронирования
func (uc *UseCase) SlotsForDay(ctx context.Context, service *domain.Service, day time.Time) ([]domain.Slot, error) {
	return uc.generate(ctx, "SlotsForDay", service, day, 1, uc.timeProvider.Now())
}

func (uc *UseCase) loadBookable(ctx context.Context, op string, serviceID int64) (*domain.Service, *domain.Vendor, error) {
	service, err := uc.catalogRepo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("%s: service id=%d not found", op, serviceID)
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("%s: failed to get service id=%d: %v", op, serviceID, err)
		return nil, nil, fmt.Errorf("%w: %s - get service: %v", ErrInternal, op, err)
	}

	vendor, err := uc.catalogRepo.GetVendorByID(ctx, service.VendorID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrVendorNotFound) {
			uc.logger.Warn("%s: vendor id=%d of service id=%d not found", op, service.VendorID, serviceID)
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("%s: failed to get vendor id=%d: %v", op, service.VendorID, err)
		return nil, nil, fmt.Errorf("%w: %s - get vendor: %v", ErrInternal, op, err)
	}

	if err := checkBookable(service, vendor); err != nil {
		uc.logger.Warn("%s: service id=%d is not bookable: %v", op, serviceID, err)
		return nil, nil, err
	}

	return service, vendor, nil
}

// generate строит слоты и отбрасывает уже начавшиеся
func (uc *UseCase) generate(
	ctx context.Context,
	op string,
	service *domain.Service,
	startDate time.Time,
	days int,
	now time.Time,
) ([]domain.Slot, error) {
	r := availability.Range(startDate, days)

	weekly, err := uc.availabilityRepo.ListWeeklyByVendor(ctx, service.VendorID)
	if err != nil {
		uc.logger.Error("%s: failed to get weekly windows for vendor=%d: %v", op, service.VendorID, err)
		return nil, fmt.Errorf("%w: %s - weekly windows: %v", ErrInternal, op, err)
	}
	if len(weekly) == 0 {
		return []domain.Slot{}, nil
	}

	overrides, err := uc.availabilityRepo.ListOverridesInRange(ctx, service.VendorID, r.Start, r.End)
	if err != nil {
		uc.logger.Error("%s: failed to get overrides for vendor=%d: %v", op, service.VendorID, err)
		return nil, fmt.Errorf("%w: %s - overrides: %v", ErrInternal, op, err)
	}

	all := availability.GenerateSlots(availability.Input{
		Weekly:          weekly,
		Overrides:       overrides,
		StartDate:       r.Start,
		Days:            days,
		DurationMinutes: service.DurationMinutes,
		BufferMinutes:   service.BufferMinutes,
	})

	slots := make([]domain.Slot, 0, len(all))
	for _, s := range all {
		if s.Start.Before(now) {
			continue
		}
		slots = append(slots, s)
	}
	return slots, nil
}
