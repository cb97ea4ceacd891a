package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/internal/audit"
	"github.com/dromero-dev/casagrande-backend/internal/credit"
	"github.com/dromero-dev/casagrande-backend/internal/inventory"
	dbpkg "github.com/dromero-dev/casagrande-backend/pkg/db"
	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
	"github.com/dromero-dev/casagrande-backend/pkg/enums"
	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
	"github.com/dromero-dev/casagrande-backend/pkg/logger"
	"github.com/dromero-dev/casagrande-backend/pkg/outbox"
)

const auditSubjectType = "sale_return"

// ErrDuplicateReturn guards the one-return-per-sale rule.
func ErrDuplicateReturn(saleID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "sale already has a return").
		WithDetails(map[string]any{"sale_id": saleID})
}

// ErrOverReturn rejects a line returning more than was sold.
func ErrOverReturn(saleItemID uuid.UUID, sold int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "returned quantity exceeds sold quantity").
		WithDetails(map[string]any{"sale_item_id": saleItemID, "quantity_sold": sold})
}

// Service nets returns against exchanges and routes the settlement.
type Service interface {
	CreateReturn(ctx context.Context, input CreateReturnInput) (*Result, error)
	Get(ctx context.Context, returnID uuid.UUID) (*models.SaleReturn, error)
}

// ReturnLineInput is one returned position keyed by the original sale item.
type ReturnLineInput struct {
	SaleItemID uuid.UUID
	Quantity   int
	Reason     enums.ReturnReason
}

// ExchangeLineInput is one replacement position handed out with the return.
type ExchangeLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateReturnInput captures a full return-plus-exchange settlement request.
// Exactly one of RefundMethod/PaymentMethod is set, forced by the computed
// direction.
type CreateReturnInput struct {
	SaleID        uuid.UUID
	GeneralReason *string
	Lines         []ReturnLineInput
	Exchanges     []ExchangeLineInput
	RefundMethod  *enums.PaymentMethod
	PaymentMethod *enums.PaymentMethod
	ActorUserID   uuid.UUID
}

// Result is the stored return plus the settlement figures and, when the
// credit account carried the settlement, the resulting balance.
type Result struct {
	Return     *models.SaleReturn `json:"return"`
	Settlement Settlement         `json:"settlement"`
	Account    *credit.Snapshot   `json:"account,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
	credit    credit.Service
	outbox    outbox.Emitter
	audit     audit.Recorder
	db        txRunner
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams wires the return service dependencies.
type ServiceParams struct {
	Repo      Repository
	Inventory inventory.Service
	Credit    credit.Service
	Outbox    outbox.Emitter
	Audit     audit.Recorder
	DB        txRunner
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("return repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if params.Credit == nil {
		return nil, fmt.Errorf("credit service required")
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
		credit:    params.Credit,
		outbox:    params.Outbox,
		audit:     params.Audit,
		db:        params.DB,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) CreateReturn(ctx context.Context, input CreateReturnInput) (*Result, error) {
	if input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one returned line is required")
	}

	sale, err := s.repo.FindSale(ctx, input.SaleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, err
	}
	exists, err := s.repo.ExistsForSale(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReturn(input.SaleID)
	}

	returnedLines, returnItems, err := buildReturnedLines(sale, input.Lines)
	if err != nil {
		return nil, err
	}
	exchangeLines, exchangeItems, err := s.buildExchangeLines(ctx, input.Exchanges)
	if err != nil {
		return nil, err
	}

	settlement := Compute(returnedLines, exchangeLines)
	if err := validateMethods(settlement.Direction, input.RefundMethod, input.PaymentMethod); err != nil {
		return nil, err
	}

	saleReturn := &models.SaleReturn{
		ID:                  uuid.New(),
		SaleID:              sale.ID,
		GeneralReason:       input.GeneralReason,
		SettlementDirection: settlement.Direction,
		SettlementAmount:    settlement.Amount,
		TotalReturned:       settlement.TotalReturned,
		TotalExchanged:      settlement.TotalExchanged,
		ExchangeKind:        settlement.ExchangeKind,
		RefundMethod:        input.RefundMethod,
		PaymentMethod:       input.PaymentMethod,
		ProcessedBy:         input.ActorUserID,
		ReturnedItems:       returnItems,
		ExchangeItems:       exchangeItems,
	}
	if hasDefectiveLine(returnItems) {
		saleReturn.SupplierCase = &models.SupplierReturnCase{
			ID:     uuid.New(),
			Status: enums.SupplierCaseStatusPending,
		}
	}

	var account *models.CreditAccount
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range returnedLines {
			if err := s.inventory.AdjustTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		for _, line := range exchangeLines {
			if err := s.inventory.AdjustTx(ctx, tx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}

		account, err = s.settleOnCredit(ctx, tx, sale, settlement, input)
		if err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Create(ctx, saleReturn); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return ErrDuplicateReturn(sale.ID)
			}
			return err
		}

		amount := settlement.Amount.StringFixed(2)
		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			SubjectType: auditSubjectType,
			SubjectID:   saleReturn.ID,
			ToState:     string(settlement.Direction),
			ActorUserID: &input.ActorUserID,
			Amount:      &amount,
			Metadata: map[string]any{
				"sale_id":         sale.ID,
				"total_returned":  settlement.TotalReturned.StringFixed(2),
				"total_exchanged": settlement.TotalExchanged.StringFixed(2),
				"exchange_kind":   settlement.ExchangeKind,
			},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReturnSettled,
			AggregateType: enums.AggregateSaleReturn,
			AggregateID:   saleReturn.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: map[string]any{
				"sale_id":              sale.ID,
				"settlement_direction": settlement.Direction,
				"settlement_amount":    settlement.Amount.StringFixed(2),
				"supplier_case":        saleReturn.SupplierCase != nil,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Return: saleReturn, Settlement: settlement}
	if account != nil {
		result.Account = credit.SnapshotOf(account)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, returnID uuid.UUID) (*models.SaleReturn, error) {
	if returnID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id is required")
	}
	saleReturn, err := s.repo.FindByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		return nil, err
	}
	return saleReturn, nil
}

// settleOnCredit moves the net settlement through the credit account when the
// chosen method is credit_account. Cash and transfer settle outside the
// system.
func (s *service) settleOnCredit(ctx context.Context, tx *gorm.DB, sale *models.Sale, settlement Settlement, input CreateReturnInput) (*models.CreditAccount, error) {
	var method *enums.PaymentMethod
	switch settlement.Direction {
	case enums.SettlementDirectionOwedToCustomer:
		method = input.RefundMethod
	case enums.SettlementDirectionOwedByCustomer:
		method = input.PaymentMethod
	default:
		return nil, nil
	}
	if method == nil || *method != enums.PaymentMethodCreditAccount {
		return nil, nil
	}

	accountID, err := s.resolveAccountID(ctx, sale)
	if err != nil {
		return nil, err
	}
	if settlement.Direction == enums.SettlementDirectionOwedToCustomer {
		return s.credit.RestoreTx(ctx, tx, accountID, settlement.Amount)
	}
	return s.credit.DrawTx(ctx, tx, accountID, settlement.Amount)
}

func (s *service) resolveAccountID(ctx context.Context, sale *models.Sale) (uuid.UUID, error) {
	if sale.AccountID != nil {
		return *sale.AccountID, nil
	}
	if sale.CustomerID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sale has no customer to settle on credit")
	}
	account, err := s.credit.GetActiveAccount(ctx, *sale.CustomerID)
	if err != nil {
		return uuid.Nil, err
	}
	return account.ID, nil
}

func buildReturnedLines(sale *models.Sale, lines []ReturnLineInput) ([]ReturnedLine, []models.ReturnItem, error) {
	saleItems := make(map[uuid.UUID]models.SaleItem, len(sale.Items))
	for _, item := range sale.Items {
		saleItems[item.ID] = item
	}

	returned := make([]ReturnedLine, 0, len(lines))
	rows := make([]models.ReturnItem, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "returned quantity must be positive")
		}
		if !line.Reason.IsValid() {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return reason")
		}
		item, ok := saleItems[line.SaleItemID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "sale item does not belong to the sale").
				WithDetails(map[string]any{"sale_item_id": line.SaleItemID})
		}
		if _, dup := seen[line.SaleItemID]; dup {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "sale item listed more than once").
				WithDetails(map[string]any{"sale_item_id": line.SaleItemID})
		}
		seen[line.SaleItemID] = struct{}{}
		if line.Quantity > item.Quantity {
			return nil, nil, ErrOverReturn(item.ID, item.Quantity)
		}

		returned = append(returned, ReturnedLine{
			ProductID: item.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: item.UnitPrice,
			Reason:    line.Reason,
		})
		rows = append(rows, models.ReturnItem{
			ID:               uuid.New(),
			SaleItemID:       item.ID,
			ProductID:        item.ProductID,
			QuantityReturned: line.Quantity,
			UnitPrice:        item.UnitPrice,
			Reason:           line.Reason,
		})
	}
	return returned, rows, nil
}

func (s *service) buildExchangeLines(ctx context.Context, inputs []ExchangeLineInput) ([]ExchangeLine, []models.ExchangeItem, error) {
	if len(inputs) == 0 {
		return nil, nil, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, line := range inputs {
		if line.Quantity <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange quantity must be positive")
		}
		if line.ProductID == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange product id is required")
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	prices := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		prices[product.ID] = product
	}

	lines := make([]ExchangeLine, 0, len(inputs))
	rows := make([]models.ExchangeItem, 0, len(inputs))
	for _, input := range inputs {
		product, ok := prices[input.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "exchange product not found").
				WithDetails(map[string]any{"product_id": input.ProductID})
		}
		lines = append(lines, ExchangeLine{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.UnitPrice,
		})
		rows = append(rows, models.ExchangeItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.UnitPrice,
		})
	}
	return lines, rows, nil
}

func validateMethods(direction enums.SettlementDirection, refund, payment *enums.PaymentMethod) error {
	switch direction {
	case enums.SettlementDirectionOwedToCustomer:
		if refund == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund method is required when the customer is owed")
		}
		if !refund.IsRefundMethod() {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund method must be cash or credit_account")
		}
		if payment == nil {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method must be empty when the customer is owed")
	case enums.SettlementDirectionOwedByCustomer:
		if payment == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required when the customer owes")
		}
		if !payment.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
		}
		if refund == nil {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "refund method must be empty when the customer owes")
	default:
		if refund != nil || payment != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "no settlement method applies to a balanced return")
		}
		return nil
	}
}

func hasDefectiveLine(items []models.ReturnItem) bool {
	for _, item := range items {
		if item.Reason == enums.ReturnReasonDefective {
			return true
		}
	}
	return false
}
