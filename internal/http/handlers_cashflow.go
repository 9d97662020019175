package http

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

func (s *Server) handleCreateCashFlow(w http.ResponseWriter, r *http.Request) {
	var req createCashFlowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txnType, err := core.ParseTxnType(req.TxnType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cf := core.CashFlow{
		AccountID:   req.AccountID,
		TxnType:     txnType,
		Category:    req.Category,
		Amount:      core.MoneyFromFloat(req.Amount),
		Description: req.Description,
	}
	if err := cf.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.cashflows.CreateCashFlow(r.Context(), cf)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCashFlowResponse(created))
}

func (s *Server) handleListCashFlows(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := s.repo.ListCashFlows(r.Context(), filter, page)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cashFlowPageResponse{
		Data:       toCashFlowListItems(result.Rows),
		PageSize:   page.Limit,
		PageNumber: page.Number(),
		TotalCount: result.TotalCount,
	})
}

func (s *Server) handleGetCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cf, err := s.repo.GetCashFlow(r.Context(), id)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCashFlowResponse(cf))
}

func (s *Server) handleUpdateCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateCashFlowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd storage.CashFlowUpdate
	if req.AccountID != nil {
		if *req.AccountID <= 0 {
			writeError(w, http.StatusUnprocessableEntity, core.ErrMissingAccountID.Error())
			return
		}
		upd.AccountID = req.AccountID
	}
	if req.TxnType != nil {
		t, err := core.ParseTxnType(*req.TxnType)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		upd.TxnType = &t
	}
	if req.Category != nil {
		if len(*req.Category) > 50 {
			writeError(w, http.StatusUnprocessableEntity, "category too long (max 50 characters)")
			return
		}
		upd.Category = req.Category
	}
	if req.Amount != nil {
		m := core.MoneyFromFloat(*req.Amount)
		if err := m.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		upd.AmountCents = &m.Cents
	}
	if req.Description != nil {
		if len(*req.Description) > 200 {
			writeError(w, http.StatusUnprocessableEntity, "description too long (max 200 characters)")
			return
		}
		upd.Description = req.Description
	}

	updated, err := s.cashflows.UpdateCashFlow(r.Context(), id, upd)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCashFlowResponse(updated))
}

func (s *Server) handleDeleteCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.cashflows.DeleteCashFlow(r.Context(), id); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
