package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/lendbook/pkg/book"
	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
	"github.com/shunichi-ikebuchi/lendbook/pkg/store"
)

// listTransactions handles GET /api/v1/transactions?q=&sort=.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	by, ok := ledger.ParseSortBy(r.URL.Query().Get("sort"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid sort")
		return
	}

	txs := s.book.Query(r.URL.Query().Get("q"), by)
	paid := s.book.PaidBack()

	resp := transactionsResponse{Transactions: make([]transactionResponse, 0, len(txs))}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t, paid))
	}
	toJSON(w, http.StatusOK, resp)
}

// getTransaction handles GET /api/v1/transactions/{id}.
func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, found := s.book.Get(id)
	if !found {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t, s.book.PaidBack()))
}

// createTransaction handles POST /api/v1/transactions.
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	draft, err := req.toDraft(time.Now())
	if err != nil {
		s.writeBookError(w, err)
		return
	}

	added, err := s.book.Add(draft)
	resp := createTransactionResponse{}
	var attachErr *book.AttachmentError
	if err != nil {
		// An attachment failure alone still adds the transaction.
		if hasSaveError(err) || !errors.As(err, &attachErr) {
			s.writeBookError(w, err)
			return
		}
		resp.Warning = attachErr.Error()
	}

	resp.Transaction = toTransactionResponse(added, s.book.PaidBack())
	toJSON(w, http.StatusCreated, resp)
}

// updateDeadline handles PUT /api/v1/transactions/{id}/deadline.
func (s *Server) updateDeadline(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	due, err := ledger.ParseDate(req.ExpectedReturnDate)
	if err != nil {
		s.writeBookError(w, err)
		return
	}

	if _, err := s.book.EditExpectedReturnDate(id, due); err != nil {
		s.writeBookError(w, err)
		return
	}

	t, _ := s.book.Get(id)
	toJSON(w, http.StatusOK, toTransactionResponse(t, s.book.PaidBack()))
}

// balances handles GET /api/v1/balances.
func (s *Server) balances(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, balancesResponse{Balances: s.book.Balances()})
}

// totals handles GET /api/v1/totals.
func (s *Server) totals(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, s.book.Totals())
}

// people handles GET /api/v1/people.
func (s *Server) people(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, peopleResponse{People: s.book.People()})
}

// paidBack handles GET /api/v1/paid-back. IDs are listed in ledger order.
func (s *Server) paidBack(w http.ResponseWriter, r *http.Request) {
	paid := s.book.PaidBack()
	resp := paidBackResponse{IDs: make([]ledger.ID, 0, len(paid))}
	for _, t := range s.book.Snapshot() {
		if paid[t.ID] {
			resp.IDs = append(resp.IDs, t.ID)
		}
	}
	toJSON(w, http.StatusOK, resp)
}

// timeline handles GET /api/v1/timeline.
func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, timelineResponse{Timeline: s.book.Timeline()})
}

func parseID(w http.ResponseWriter, r *http.Request) (ledger.ID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return ledger.ID{}, false
	}
	return id, true
}

func hasSaveError(err error) bool {
	var saveErr *store.SaveError
	return errors.As(err, &saveErr)
}

// writeBookError maps book and ledger errors to HTTP responses.
func (s *Server) writeBookError(w http.ResponseWriter, err error) {
	var saveErr *store.SaveError
	switch {
	case errors.As(err, &saveErr):
		s.log.Error("Change may not be durable", "step", saveErr.Step, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "save_failed", err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrNoDeadline):
		writeJSONError(w, http.StatusBadRequest, "no_deadline", err.Error())
	case errors.Is(err, ledger.ErrDeadlineUnchanged):
		writeJSONError(w, http.StatusBadRequest, "deadline_unchanged", err.Error())
	case errors.Is(err, ledger.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	default:
		s.log.Error("Request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
