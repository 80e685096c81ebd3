package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/analytics"
	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

type deadlineChangeResponse struct {
	OldDate   string    `json:"old_date"`
	NewDate   string    `json:"new_date"`
	ChangedAt time.Time `json:"changed_at"`
}

type transactionResponse struct {
	ID                 ledger.ID                `json:"id"`
	Person             string                   `json:"person"`
	Amount             decimal.Decimal          `json:"amount"`
	Currency           ledger.Currency          `json:"currency"`
	Direction          ledger.Direction         `json:"direction"`
	OccurredAt         time.Time                `json:"occurred_at"`
	ExpectedReturnDate *string                  `json:"expected_return_date"`
	AttachmentPath     string                   `json:"attachment_path,omitempty"`
	DeadlineChanges    []deadlineChangeResponse `json:"deadline_changes"`
	PaidBack           bool                     `json:"paid_back"`
}

type transactionsResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

type createTransactionRequest struct {
	Person             string          `json:"person"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Direction          string          `json:"direction"`
	OccurredAt         *time.Time      `json:"occurred_at"`
	ExpectedReturnDate *string         `json:"expected_return_date"`
	Attachment         string          `json:"attachment"`
}

type createTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Warning     string              `json:"warning,omitempty"`
}

type updateDeadlineRequest struct {
	ExpectedReturnDate string `json:"expected_return_date"`
}

type balancesResponse struct {
	Balances []analytics.CurrencyBalance `json:"balances"`
}

type peopleResponse struct {
	People []analytics.PersonReport `json:"people"`
}

type paidBackResponse struct {
	IDs []ledger.ID `json:"ids"`
}

type timelineResponse struct {
	Timeline map[ledger.Currency][]analytics.Sample `json:"timeline"`
}

func toTransactionResponse(t ledger.Transaction, paid map[ledger.ID]bool) transactionResponse {
	resp := transactionResponse{
		ID:              t.ID,
		Person:          t.Counterparty,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Direction:       t.Direction,
		OccurredAt:      t.OccurredAt,
		AttachmentPath:  t.AttachmentPath,
		DeadlineChanges: make([]deadlineChangeResponse, 0, len(t.DeadlineHistory)),
		PaidBack:        paid[t.ID],
	}
	if t.ExpectedReturn != nil {
		due := t.ExpectedReturn.String()
		resp.ExpectedReturnDate = &due
	}
	for _, c := range t.DeadlineHistory {
		resp.DeadlineChanges = append(resp.DeadlineChanges, deadlineChangeResponse{
			OldDate:   c.OldDate.String(),
			NewDate:   c.NewDate.String(),
			ChangedAt: c.ChangedAt,
		})
	}
	return resp
}

func (req createTransactionRequest) toDraft(now time.Time) (ledger.Draft, error) {
	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		return ledger.Draft{}, err
	}
	direction, err := ledger.ParseDirection(req.Direction)
	if err != nil {
		return ledger.Draft{}, err
	}

	d := ledger.Draft{
		Counterparty:     req.Person,
		Amount:           req.Amount,
		Currency:         currency,
		Direction:        direction,
		OccurredAt:       now,
		AttachmentSource: req.Attachment,
	}
	if req.OccurredAt != nil {
		d.OccurredAt = *req.OccurredAt
	}
	if req.ExpectedReturnDate != nil && *req.ExpectedReturnDate != "" {
		due, err := ledger.ParseDate(*req.ExpectedReturnDate)
		if err != nil {
			return ledger.Draft{}, err
		}
		d.ExpectedReturn = &due
	}
	return d, nil
}
