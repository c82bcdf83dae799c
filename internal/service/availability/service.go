package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	slotalgebra "github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/availability"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

// Service сервис управления расписанием вендора
type Service struct {
	availabilityRepo AvailabilityRepository
	vendorRepo       VendorRepository
	txManager        TransactionManager
	logger           Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	availabilityRepo AvailabilityRepository,
	vendorRepo VendorRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		vendorRepo:       vendorRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// GetWeekly получает недельное расписание вендора
// Публичный метод
func (s *Service) GetWeekly(ctx context.Context, vendorID int64) (*models.WeeklyAvailabilityResponse, error) {
	s.logger.Info("GetWeekly: fetching weekly windows for vendor=%d", vendorID)

	if _, err := s.getVendor(ctx, "GetWeekly", vendorID); err != nil {
		return nil, err
	}

	windows, err := s.availabilityRepo.ListWeeklyByVendor(ctx, vendorID)
	if err != nil {
		s.logger.Error("GetWeekly: repository error for vendor=%d: %v", vendorID, err)
		return nil, fmt.Errorf("%w: GetWeekly - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWindows(vendorID, windows), nil
}

// ReplaceWeekly заменяет недельное расписание целиком
// Доступно только владельцу вендора
func (s *Service) ReplaceWeekly(ctx context.Context, req *models.ReplaceWeeklyRequest) (*models.WeeklyAvailabilityResponse, error) {
	s.logger.Info("ReplaceWeekly: replacing %d windows for vendor=%d by user=%d", len(req.Windows), req.VendorID, req.UserID)

	// 1. Валидируем окна
	windows, err := req.ToDomainWindows()
	if err != nil {
		s.logger.Warn("ReplaceWeekly: invalid windows for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := slotalgebra.ValidateWeeklyWindows(windows); err != nil {
		s.logger.Warn("ReplaceWeekly: validation failed for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем владельца
	if err := s.checkOwner(ctx, "ReplaceWeekly", req.VendorID, req.UserID); err != nil {
		return nil, err
	}

	// 3. delete-all + insert-all в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.availabilityRepo.ReplaceWeekly(txCtx, req.VendorID, windows)
	})
	if err != nil {
		s.logger.Error("ReplaceWeekly: failed to replace windows for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: ReplaceWeekly - transaction error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceWeekly: successfully replaced windows for vendor=%d", req.VendorID)
	return models.FromDomainWindows(req.VendorID, windows), nil
}

// CreateOverride создает разовое изменение расписания
func (s *Service) CreateOverride(ctx context.Context, req *models.CreateOverrideRequest) (*models.OverrideResponse, error) {
	s.logger.Info("CreateOverride: creating %s override for vendor=%d by user=%d", req.Kind, req.VendorID, req.UserID)

	kind := domain.OverrideKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	reason, err := slotalgebra.ValidateOverride(req.StartsAt, req.EndsAt, kind, req.Reason)
	if err != nil {
		s.logger.Warn("CreateOverride: validation failed for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkOwner(ctx, "CreateOverride", req.VendorID, req.UserID); err != nil {
		return nil, err
	}

	created, err := s.availabilityRepo.CreateOverride(ctx, &domain.AvailabilityOverride{
		VendorID: req.VendorID,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
		Kind:     kind,
		Reason:   reason,
	})
	if err != nil {
		s.logger.Error("CreateOverride: repository error for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: CreateOverride - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateOverride: successfully created override id=%d", created.ID)
	return models.FromDomainOverride(created), nil
}

// ListOverrides получает overrides, пересекающие диапазон
func (s *Service) ListOverrides(ctx context.Context, req *models.ListOverridesRequest) (*models.OverrideListResponse, error) {
	s.logger.Info("ListOverrides: fetching overrides for vendor=%d", req.VendorID)

	if !req.From.Before(req.To) {
		s.logger.Warn("ListOverrides: invalid range for vendor=%d", req.VendorID)
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	if err := s.checkOwner(ctx, "ListOverrides", req.VendorID, req.UserID); err != nil {
		return nil, err
	}

	overrides, err := s.availabilityRepo.ListOverridesInRange(ctx, req.VendorID, req.From, req.To)
	if err != nil {
		s.logger.Error("ListOverrides: repository error for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: ListOverrides - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverrideList(overrides), nil
}

// DeleteOverride удаляет override вендора
func (s *Service) DeleteOverride(ctx context.Context, req *models.DeleteOverrideRequest) error {
	s.logger.Info("DeleteOverride: deleting override id=%d for vendor=%d by user=%d", req.OverrideID, req.VendorID, req.UserID)

	if err := s.checkOwner(ctx, "DeleteOverride", req.VendorID, req.UserID); err != nil {
		return err
	}

	override, err := s.availabilityRepo.GetOverrideByID(ctx, req.OverrideID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
			s.logger.Warn("DeleteOverride: override id=%d not found", req.OverrideID)
			return ErrOverrideNotFound
		}
		s.logger.Error("DeleteOverride: repository error for override id=%d: %v", req.OverrideID, err)
		return fmt.Errorf("%w: DeleteOverride - repository error: %v", ErrInternal, err)
	}

	// Чужой override не раскрываем
	if override.VendorID != req.VendorID {
		s.logger.Warn("DeleteOverride: override id=%d belongs to vendor=%d", req.OverrideID, override.VendorID)
		return ErrOverrideNotFound
	}

	if err := s.availabilityRepo.DeleteOverride(ctx, req.OverrideID); err != nil {
		if errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
			return ErrOverrideNotFound
		}
		s.logger.Error("DeleteOverride: repository error for override id=%d: %v", req.OverrideID, err)
		return fmt.Errorf("%w: DeleteOverride - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteOverride: successfully deleted override id=%d", req.OverrideID)
	return nil
}

// Вспомогательные методы

func (s *Service) getVendor(ctx context.Context, op string, vendorID int64) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.GetVendorByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrVendorNotFound) {
			s.logger.Warn("%s: vendor id=%d not found", op, vendorID)
			return nil, ErrVendorNotFound
		}
		s.logger.Error("%s: failed to get vendor id=%d: %v", op, vendorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get vendor: %v", ErrInternal, op, err)
	}
	return vendor, nil
}

func (s *Service) checkOwner(ctx context.Context, op string, vendorID, userID int64) error {
	vendor, err := s.getVendor(ctx, op, vendorID)
	if err != nil {
		return err
	}
	if !vendor.IsOwnedBy(userID) {
		s.logger.Warn("%s: user=%d is not the owner of vendor=%d", op, userID, vendorID)
		return ErrAccessDenied
	}
	return nil
}
