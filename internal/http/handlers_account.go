package http

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accountType, err := core.ParseAccountType(req.AccountType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var balance core.Money
	if req.Balance != nil {
		balance = core.MoneyFromFloat(*req.Balance)
	}

	account := core.Account{
		BankAccountNo: core.NormalizeAccountNo(req.BankAccountNo),
		BankName:      req.BankName,
		AccountType:   accountType,
		HolderName:    req.HolderName,
		Currency:      currency,
		Balance:       balance,
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.repo.CreateAccount(r.Context(), account)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	accounts, err := s.repo.ListAccounts(r.Context(), page)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.repo.GetAccount(r.Context(), id)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd storage.AccountUpdate
	if req.BankAccountNo != nil {
		no := core.NormalizeAccountNo(*req.BankAccountNo)
		if n := len(no); n < 10 || n > 50 {
			writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidAccountNo.Error())
			return
		}
		upd.BankAccountNo = &no
	}
	if req.BankName != nil {
		if n := len(*req.BankName); n < 3 || n > 50 {
			writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidBankName.Error())
			return
		}
		upd.BankName = req.BankName
	}
	if req.AccountType != nil {
		t, err := core.ParseAccountType(*req.AccountType)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		upd.AccountType = &t
	}
	if req.HolderName != nil {
		if *req.HolderName == "" {
			writeError(w, http.StatusUnprocessableEntity, core.ErrEmptyHolderName.Error())
			return
		}
		upd.HolderName = req.HolderName
	}
	if req.Currency != nil {
		c, err := core.ParseCurrency(*req.Currency)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		upd.Currency = &c
	}
	if req.Balance != nil {
		cents := core.MoneyFromFloat(*req.Balance).Cents
		if cents < 0 {
			writeError(w, http.StatusUnprocessableEntity, core.ErrNegativeBalance.Error())
			return
		}
		upd.BalanceCents = &cents
	}

	updated, err := s.repo.UpdateAccount(r.Context(), id, upd)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.DeleteAccount(r.Context(), id); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
