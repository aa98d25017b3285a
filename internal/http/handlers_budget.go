package http

import (
	"net/http"
	"strconv"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type budgetResponse struct {
	ID             int64  `json:"id"`
	Month          string `json:"month"`
	Allocated      string `json:"allocated"`
	AllocatedCents int64  `json:"allocated_cents"`
	CategoryID     int64  `json:"category_id"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:             b.ID,
		Month:          b.Month.String(),
		Allocated:      b.Allocated.String(),
		AllocatedCents: b.Allocated.Cents,
		CategoryID:     b.CategoryID,
	}
}

type budgetStatusResponse struct {
	CategoryID     int64  `json:"category_id"`
	CategoryName   string `json:"category_name"`
	Month          string `json:"month"`
	AllocatedCents int64  `json:"allocated_cents"`
	SpentCents     int64  `json:"spent_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	Overspent      bool   `json:"overspent"`
}

func toBudgetStatusResponse(st core.BudgetStatus) budgetStatusResponse {
	return budgetStatusResponse{
		CategoryID:     st.CategoryID,
		CategoryName:   st.CategoryName,
		Month:          st.Month.String(),
		AllocatedCents: st.Allocated.Cents,
		SpentCents:     st.Spent.Cents,
		RemainingCents: st.Remaining().Cents,
		Overspent:      st.Overspent(),
	}
}

type createBudgetRequest struct {
	Month      string `json:"month"`
	Allocated  string `json:"allocated"`
	CategoryID int64  `json:"category_id"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	month, err := core.ParseMonth(req.Month)
	if err != nil {
		badRequest(w, "invalid month, expected YYYY-MM")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Allocated)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.budgets.Create(r.Context(), req.CategoryID, month, cents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(b))
}

// handleListBudgets serves ?month= and ?category_id= queries.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		list []core.Budget
		err  error
	)
	switch {
	case q.Get("month") != "":
		var month core.Month
		month, err = core.ParseMonth(q.Get("month"))
		if err != nil {
			badRequest(w, "invalid month, expected YYYY-MM")
			return
		}
		list, err = s.budgets.GetByMonth(r.Context(), month)
	case q.Get("category_id") != "":
		var categoryID int64
		categoryID, err = strconv.ParseInt(q.Get("category_id"), 10, 64)
		if err != nil {
			badRequest(w, "invalid category_id")
			return
		}
		list, err = s.budgets.GetByCategory(r.Context(), categoryID)
	default:
		badRequest(w, "provide month or category_id query parameter")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		badRequest(w, "invalid month, expected YYYY-MM")
		return
	}

	statuses, err := s.budgets.Status(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, toBudgetStatusResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	b, err := s.budgets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

type updateBudgetRequest struct {
	Month      *string `json:"month"`
	Allocated  *string `json:"allocated"`
	CategoryID *int64  `json:"category_id"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req updateBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	params := storage.UpdateBudgetParams{CategoryID: req.CategoryID}
	if req.Month != nil {
		month, err := core.ParseMonth(*req.Month)
		if err != nil {
			badRequest(w, "invalid month, expected YYYY-MM")
			return
		}
		params.Month = &month
	}
	if req.Allocated != nil {
		cents, err := core.ParseDecimalToCents(*req.Allocated)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.AllocatedCents = &cents
	}

	b, err := s.budgets.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := s.budgets.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
