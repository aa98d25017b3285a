package http

import (
	"net/http"
	"strconv"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/services"
	"cashflow/internal/storage"
)

// Expenses and earnings share handlers; the bound service supplies the
// kind.

type transactionResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"transaction_date"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
	CategoryID  int64  `json:"category_id"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		Description: t.Description,
		CategoryID:  t.CategoryID,
	}
}

type createTransactionRequest struct {
	Date        string `json:"transaction_date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
}

func (s *Server) transactionCreator(svc *services.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTransactionRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}

		date, err := core.ParseDate(req.Date)
		if err != nil {
			badRequest(w, "invalid transaction_date, expected YYYY-MM-DD")
			return
		}
		cents, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}

		t, err := svc.Create(r.Context(), date, cents, req.CategoryID, req.Description)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTransactionResponse(t))
	}
}

// transactionLister serves ?category_id= and ?from=&to= queries. The
// range is inclusive on both ends.
func (s *Server) transactionLister(svc *services.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var (
			list []core.Transaction
			err  error
		)
		switch {
		case q.Get("category_id") != "":
			var categoryID int64
			categoryID, err = strconv.ParseInt(q.Get("category_id"), 10, 64)
			if err != nil {
				badRequest(w, "invalid category_id")
				return
			}
			list, err = svc.GetByCategory(r.Context(), categoryID)
		case q.Get("from") != "" && q.Get("to") != "":
			var from, to core.Date
			from, err = core.ParseDate(q.Get("from"))
			if err != nil {
				badRequest(w, "invalid from date, expected YYYY-MM-DD")
				return
			}
			to, err = core.ParseDate(q.Get("to"))
			if err != nil {
				badRequest(w, "invalid to date, expected YYYY-MM-DD")
				return
			}
			list, err = svc.GetByRange(r.Context(), from, to)
		default:
			badRequest(w, "provide category_id or from/to query parameters")
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]transactionResponse, 0, len(list))
		for _, t := range list {
			out = append(out, toTransactionResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) transactionGetter(svc *services.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			badRequest(w, "invalid id")
			return
		}

		t, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(t))
	}
}

type updateTransactionRequest struct {
	Date        *string `json:"transaction_date"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"category_id"`
}

func (s *Server) transactionUpdater(svc *services.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			badRequest(w, "invalid id")
			return
		}

		var req updateTransactionRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}

		params := storage.UpdateTransactionParams{
			Description: req.Description,
			CategoryID:  req.CategoryID,
		}
		if req.Date != nil {
			date, err := core.ParseDate(strings.TrimSpace(*req.Date))
			if err != nil {
				badRequest(w, "invalid transaction_date, expected YYYY-MM-DD")
				return
			}
			params.Date = &date
		}
		if req.Amount != nil {
			cents, err := core.ParseDecimalToCents(*req.Amount)
			if err != nil {
				writeError(w, r, err)
				return
			}
			params.AmountCents = &cents
		}

		t, err := svc.Update(r.Context(), id, params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(t))
	}
}

func (s *Server) transactionDeleter(svc *services.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			badRequest(w, "invalid id")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
