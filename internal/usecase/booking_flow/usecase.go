package booking_flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/cache/flows"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

// UseCase контроллер пошагового бронирования: service -> details -> payment -> confirmation.
// Состояние живет в FlowStore, переходы считает orchestrator.
type UseCase struct {
	store         FlowStore
	serviceRepo   ServiceRepository
	createBooking BookingCreator
	slots         SlotsProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store FlowStore,
	serviceRepo ServiceRepository,
	createBooking BookingCreator,
	slots SlotsProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:         store,
		serviceRepo:   serviceRepo,
		createBooking: createBooking,
		slots:         slots,
		logger:        logger,
	}
}

// Start открывает сессию на шаге service для выбранной услуги
func (uc *UseCase) Start(ctx context.Context, actor domain.Actor, serviceID uuid.UUID) (*View, error) {
	uc.logger.Info("StartBookingFlow: client=%s, service=%s", actor.ID, serviceID)

	if actor.Role != domain.RoleClient {
		uc.logger.Warn("StartBookingFlow: actor=%s with role=%s is not a client", actor.ID, actor.Role)
		return nil, &domain.AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: "start booking flow"}
	}

	service, err := uc.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			uc.logger.Warn("StartBookingFlow: service id=%s not found", serviceID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("StartBookingFlow: failed to get service id=%s: %v", serviceID, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	if !service.IsActive {
		uc.logger.Warn("StartBookingFlow: service id=%s is inactive", serviceID)
		return nil, domain.NewConflictError(domain.ErrServiceInactive, service.ID.String())
	}

	state := orchestrator.New(uuid.New(), actor.ID, orchestrator.ServiceSummary{
		ID:             service.ID,
		ProfessionalID: service.ProfessionalID,
		Title:          service.Title,
		Type:           service.ServiceType,
		PriceInCents:   service.PriceInCents,
	})

	if err := uc.store.Save(ctx, state); err != nil {
		uc.logger.Error("StartBookingFlow: failed to save flow: %v", err)
		return nil, mapError(err)
	}

	uc.logger.Info("StartBookingFlow: flow=%s started", state.FlowID)
	return newView(state), nil
}

// Get возвращает текущее состояние сессии
func (uc *UseCase) Get(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*View, error) {
	state, err := uc.load(ctx, actor, flowID)
	if err != nil {
		return nil, err
	}
	return newView(state), nil
}

// UpdateDetails заменяет данные формы на шаге details
func (uc *UseCase) UpdateDetails(ctx context.Context, actor domain.Actor, flowID uuid.UUID, details orchestrator.Details) (*View, error) {
	return uc.mutate(ctx, "UpdateFlowDetails", actor, flowID, func(s orchestrator.State) (orchestrator.State, error) {
		return orchestrator.WithDetails(s, details)
	})
}

// Next переходит на следующий шаг, если пройден гейт текущего
func (uc *UseCase) Next(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*View, error) {
	return uc.mutate(ctx, "NextFlowStep", actor, flowID, orchestrator.Next)
}

// Prev возвращается на шаг назад. С шага service сессия закрывается без побочных эффектов.
func (uc *UseCase) Prev(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*View, error) {
	view, err := uc.mutate(ctx, "PrevFlowStep", actor, flowID, orchestrator.Prev)
	if err != nil || !view.Exited {
		return view, err
	}

	if err := uc.store.Delete(ctx, flowID); err != nil {
		uc.logger.Error("PrevFlowStep: failed to delete exited flow=%s: %v", flowID, err)
	}
	uc.logger.Info("PrevFlowStep: flow=%s exited", flowID)
	return view, nil
}

// Slots получает слоты выбранной услуги на день. Доступно на шаге details для TIME_BASED.
// Пока запрос выполняется, сессия не принимает других изменений.
func (uc *UseCase) Slots(ctx context.Context, actor domain.Actor, flowID uuid.UUID, date time.Time) (*get_available_slots.Response, error) {
	uc.logger.Info("FlowSlots: flow=%s, date=%s", flowID, date.Format(domain.DateFormat))

	var resp *get_available_slots.Response
	_, err := uc.withLock(ctx, "FlowSlots", actor, flowID, func(state orchestrator.State) (orchestrator.State, error) {
		if state.Step != orchestrator.StepDetails {
			return state, fmt.Errorf("%w: slots are picked at %s", orchestrator.ErrInvalidStep, orchestrator.StepDetails)
		}

		state, err := uc.beginInFlight(ctx, state, orchestrator.BeginInFlight)
		if err != nil {
			return state, err
		}

		resp, err = uc.slots.Execute(ctx, &get_available_slots.Request{
			ProfessionalID: state.Service.ProfessionalID,
			ServiceID:      state.Service.ID,
			Date:           date,
		})
		return orchestrator.EndInFlight(state), err
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Confirm авторизует платеж и создает бронирование.
// Конфликт, сбой внешней системы и отказ платежа оставляют сессию на шаге payment
// с причиной в LastError; ошибка при этом не возвращается.
// Бронирование создается с ключом FlowID: если после записи не удалось сохранить
// сессию, повторный Confirm вернет то же бронирование без второй авторизации.
func (uc *UseCase) Confirm(ctx context.Context, actor domain.Actor, flowID uuid.UUID, paymentToken string) (*View, error) {
	return uc.withLock(ctx, "ConfirmFlow", actor, flowID, func(state orchestrator.State) (orchestrator.State, error) {
		state, err := uc.beginInFlight(ctx, state, orchestrator.BeginConfirm)
		if err != nil {
			return state, err
		}

		resp, err := uc.createBooking.Execute(ctx, &create_booking.Request{
			Actor:               actor,
			ServiceID:           state.Service.ID,
			BookingDateTime:     state.Details.BookingDateTime,
			ProjectRequirements: state.Details.ProjectRequirements,
			SpecialRequests:     state.Details.SpecialRequests,
			ClientNotes:         state.Details.ClientNotes,
			PaymentToken:        paymentToken,
			IdempotencyKey:      ptr.Ptr(state.FlowID),
		})

		switch {
		case err == nil:
			uc.logger.Info("ConfirmFlow: flow=%s confirmed booking=%s", flowID, resp.ID)
			return orchestrator.Confirmed(state, resp.ID), nil
		case orchestrator.IsRecoverable(err):
			uc.logger.Warn("ConfirmFlow: flow=%s stays on payment: %v", flowID, err)
			return orchestrator.ConfirmFailed(state, err), nil
		}

		uc.logger.Error("ConfirmFlow: flow=%s: %v", flowID, err)
		return orchestrator.EndInFlight(state), err
	})
}

// mutate применяет чистый переход к сохраненному состоянию под блокировкой
func (uc *UseCase) mutate(
	ctx context.Context,
	op string,
	actor domain.Actor,
	flowID uuid.UUID,
	reduce func(orchestrator.State) (orchestrator.State, error),
) (*View, error) {
	uc.logger.Info("%s: flow=%s, actor=%s", op, flowID, actor.ID)
	return uc.withLock(ctx, op, actor, flowID, reduce)
}

// withLock берет блокировку сессии, загружает состояние, применяет fn и сохраняет результат.
// Результат fn сохраняется и при ошибке, чтобы снятая отметка in-flight не потерялась.
func (uc *UseCase) withLock(
	ctx context.Context,
	op string,
	actor domain.Actor,
	flowID uuid.UUID,
	fn func(orchestrator.State) (orchestrator.State, error),
) (*View, error) {
	release, err := uc.store.Lock(ctx, flowID)
	if err != nil {
		uc.logger.Warn("%s: flow=%s: %v", op, flowID, err)
		return nil, mapError(err)
	}
	defer release()

	state, err := uc.load(ctx, actor, flowID)
	if err != nil {
		return nil, err
	}

	// Отметка in-flight без блокировки осталась от упавшего процесса
	if state.InFlight {
		uc.logger.Warn("%s: flow=%s has a stale in-flight mark, clearing", op, flowID)
		state = orchestrator.EndInFlight(state)
	}

	next, fnErr := fn(state)
	if fnErr != nil {
		uc.logger.Warn("%s: flow=%s rejected: %v", op, flowID, fnErr)
	}

	if next.Exited {
		return newView(next), mapError(fnErr)
	}

	if err := uc.store.Save(ctx, next); err != nil {
		uc.logger.Error("%s: failed to save flow=%s: %v", op, flowID, err)
		return nil, mapError(err)
	}

	if fnErr != nil {
		return nil, mapError(fnErr)
	}
	return newView(next), nil
}

// beginInFlight сохраняет отметку in-flight до блокирующего вызова
func (uc *UseCase) beginInFlight(
	ctx context.Context,
	state orchestrator.State,
	begin func(orchestrator.State) (orchestrator.State, error),
) (orchestrator.State, error) {
	next, err := begin(state)
	if err != nil {
		return state, err
	}
	if err := uc.store.Save(ctx, next); err != nil {
		return state, err
	}
	return next, nil
}

// load читает сессию. Чужая сессия для актора не существует.
func (uc *UseCase) load(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (orchestrator.State, error) {
	state, err := uc.store.Load(ctx, flowID)
	if err != nil {
		if !errors.Is(err, flows.ErrFlowNotFound) {
			uc.logger.Warn("LoadFlow: flow=%s: %v", flowID, err)
		}
		return state, mapError(err)
	}

	if state.ClientID != actor.ID {
		uc.logger.Warn("LoadFlow: flow=%s does not belong to actor=%s", flowID, actor.ID)
		return orchestrator.State{}, domain.ErrFlowNotFound
	}
	return state, nil
}
