package suppliercases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/inventory"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

const auditSubjectType = "supplier_case"

// ErrAlreadyReconciled guards the one-shot reconciliation.
func ErrAlreadyReconciled(caseID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "supplier case is already reconciled").
		WithDetails(map[string]any{"case_id": caseID})
}

// ErrOverReceipt rejects receiving more units than were shipped.
func ErrOverReceipt(lineID uuid.UUID, shipped int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "received quantity exceeds shipped quantity").
		WithDetails(map[string]any{"line_id": lineID, "quantity_shipped": shipped})
}

// Service tracks defective returned goods through supplier reconciliation.
type Service interface {
	Ship(ctx context.Context, input ShipInput) (*models.SupplierReturnCase, error)
	ConfirmReception(ctx context.Context, input ConfirmReceptionInput) (*models.SupplierReturnCase, error)
	Get(ctx context.Context, caseID uuid.UUID) (*models.SupplierReturnCase, error)
	GetByReturn(ctx context.Context, returnID uuid.UUID) (*models.SupplierReturnCase, error)
}

// ShipLineInput is one product batch sent back to the supplier.
type ShipLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ShipInput moves a pending case to shipped with its lines.
type ShipInput struct {
	CaseID      uuid.UUID
	SupplierID  uuid.UUID
	Lines       []ShipLineInput
	ActorUserID uuid.UUID
}

// ReceiveLineInput reconciles one shipped line. The supplier may substitute a
// different product.
type ReceiveLineInput struct {
	LineID              uuid.UUID
	QuantityReceived    int
	SubstituteProductID *uuid.UUID
	Notes               *string
}

// ConfirmReceptionInput closes the reconciliation one-shot.
type ConfirmReceptionInput struct {
	CaseID        uuid.UUID
	ReceptionDate time.Time
	Lines         []ReceiveLineInput
	ActorUserID   uuid.UUID
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
	outbox    outbox.Emitter
	audit     audit.Recorder
	db        txRunner
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams wires the supplier case service dependencies.
type ServiceParams struct {
	Repo      Repository
	Inventory inventory.Service
	Outbox    outbox.Emitter
	Audit     audit.Recorder
	DB        txRunner
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("supplier case repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		inventory: params.Inventory,
		outbox:    params.Outbox,
		audit:     params.Audit,
		db:        params.DB,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) Ship(ctx context.Context, input ShipInput) (*models.SupplierReturnCase, error) {
	if input.CaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "case id is required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one shipped line is required")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipped product id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipped quantity must be positive")
		}
	}

	var shipped *models.SupplierReturnCase
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplierCase, err := repo.FindByID(ctx, input.CaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier case not found")
			}
			return err
		}
		if supplierCase.Status != enums.SupplierCaseStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "supplier case is not pending").
				WithDetails(map[string]any{"status": supplierCase.Status})
		}

		shippedAt := s.now()
		affected, err := repo.ShipPending(ctx, supplierCase.ID, input.SupplierID, shippedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "supplier case is not pending")
		}

		lines := make([]models.SupplierReturnLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			lines = append(lines, models.SupplierReturnLine{
				ID:              uuid.New(),
				CaseID:          supplierCase.ID,
				ProductID:       line.ProductID,
				QuantityShipped: line.Quantity,
			})
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return err
		}

		supplierCase.Status = enums.SupplierCaseStatusShipped
		supplierCase.SupplierID = &input.SupplierID
		supplierCase.ShippedAt = &shippedAt
		supplierCase.Lines = lines

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   supplierCase.ID,
			FromState:   string(enums.SupplierCaseStatusPending),
			ToState:     string(enums.SupplierCaseStatusShipped),
			ActorUserID: &input.ActorUserID,
			Metadata:    map[string]any{"supplier_id": input.SupplierID, "lines": len(lines)},
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierCaseShipped,
			AggregateType: enums.AggregateSupplierCase,
			AggregateID:   supplierCase.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"supplier_id": input.SupplierID,
				"return_id":   supplierCase.ReturnID,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		shipped = supplierCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipped, nil
}

func (s *service) ConfirmReception(ctx context.Context, input ConfirmReceptionInput) (*models.SupplierReturnCase, error) {
	if input.CaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "case id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one received line is required")
	}
	receptionDate := input.ReceptionDate
	if receptionDate.IsZero() {
		receptionDate = s.now()
	}

	var reconciled *models.SupplierReturnCase
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplierCase, err := repo.FindByID(ctx, input.CaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier case not found")
			}
			return err
		}
		if supplierCase.Status.IsReconciled() {
			return ErrAlreadyReconciled(supplierCase.ID)
		}
		if supplierCase.Status != enums.SupplierCaseStatusShipped {
			return pkgerrors.New(pkgerrors.CodeInvariant, "supplier case has not been shipped")
		}

		caseLines := make(map[uuid.UUID]*models.SupplierReturnLine, len(supplierCase.Lines))
		for i := range supplierCase.Lines {
			caseLines[supplierCase.Lines[i].ID] = &supplierCase.Lines[i]
		}

		receivedAt := s.now()
		for _, received := range input.Lines {
			line, ok := caseLines[received.LineID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "line does not belong to the case").
					WithDetails(map[string]any{"line_id": received.LineID})
			}
			if received.QuantityReceived < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "received quantity cannot be negative")
			}
			if received.QuantityReceived > line.QuantityShipped {
				return ErrOverReceipt(line.ID, line.QuantityShipped)
			}

			line.QuantityReceived = received.QuantityReceived
			line.SubstituteProductID = received.SubstituteProductID
			line.ReceptionNotes = received.Notes
			line.ReceivedAt = &receivedAt
			if err := repo.SaveLineReception(ctx, line); err != nil {
				return err
			}

			if received.QuantityReceived > 0 {
				productID := line.ProductID
				if received.SubstituteProductID != nil {
					productID = *received.SubstituteProductID
				}
				if err := s.inventory.AdjustTx(ctx, tx, productID, received.QuantityReceived); err != nil {
					return err
				}
			}
		}

		outcome := reconciliationOutcome(supplierCase.Lines)
		affected, err := repo.ReconcileShipped(ctx, supplierCase.ID, outcome, receivedAt, receptionDate)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyReconciled(supplierCase.ID)
		}

		supplierCase.Status = outcome
		supplierCase.ReconciledAt = &receivedAt
		supplierCase.ReceptionDate = &receptionDate

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   supplierCase.ID,
			FromState:   string(enums.SupplierCaseStatusShipped),
			ToState:     string(outcome),
			ActorUserID: &input.ActorUserID,
			Metadata:    map[string]any{"reception_date": receptionDate},
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierCaseReconciled,
			AggregateType: enums.AggregateSupplierCase,
			AggregateID:   supplierCase.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"outcome":   outcome,
				"return_id": supplierCase.ReturnID,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		reconciled = supplierCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconciled, nil
}

func (s *service) Get(ctx context.Context, caseID uuid.UUID) (*models.SupplierReturnCase, error) {
	if caseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "case id is required")
	}
	supplierCase, err := s.repo.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier case not found")
		}
		return nil, err
	}
	return supplierCase, nil
}

func (s *service) GetByReturn(ctx context.Context, returnID uuid.UUID) (*models.SupplierReturnCase, error) {
	if returnID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id is required")
	}
	supplierCase, err := s.repo.FindByReturnID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier case not found")
		}
		return nil, err
	}
	return supplierCase, nil
}

// reconciliationOutcome is completed only when every line came back in full.
func reconciliationOutcome(lines []models.SupplierReturnLine) enums.SupplierCaseStatus {
	for _, line := range lines {
		if line.QuantityReceived < line.QuantityShipped {
			return enums.SupplierCaseStatusPartiallyReceived
		}
	}
	return enums.SupplierCaseStatusCompleted
}
