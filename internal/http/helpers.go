package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/storage"
)

const maxBodyBytes = 1 << 20

// errorResponse is the uniform error envelope for every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but note it.
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeStorageError maps repository sentinel errors onto HTTP statuses:
// missing rows are 404, constraint violations 400, everything else 500.
func writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, storage.ErrDuplicateAccountNo):
		writeError(w, http.StatusBadRequest, "bank account number already exists")
	case errors.Is(err, storage.ErrAccountMissing):
		writeError(w, http.StatusBadRequest, "referenced account does not exist")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Storage error",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID parses the {id} path segment of a routed request.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// parsePage reads skip/limit query parameters with the listing defaults.
func parsePage(r *http.Request) (core.Page, error) {
	page := core.Page{Skip: 0, Limit: core.DefaultPageLimit}

	if v := strings.TrimSpace(r.URL.Query().Get("skip")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.ErrNegativeSkip
		}
		page.Skip = n
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.ErrInvalidLimit
		}
		page.Limit = n
	}

	if err := page.Validate(); err != nil {
		return core.Page{}, err
	}
	return page, nil
}

// parseListFilter reads the optional filter predicates from list query
// parameters. Amount bounds accept decimal strings ("12.50").
func parseListFilter(r *http.Request) (core.Filter, error) {
	var f core.Filter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("account_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.Filter{}, core.ErrInvalidAccount
		}
		f.AccountID = &id
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		f.Category = &v
	}
	if v := strings.TrimSpace(q.Get("txn_type")); v != "" {
		t, err := core.ParseTxnType(v)
		if err != nil {
			return core.Filter{}, err
		}
		f.TxnType = &t
	}
	if v := strings.TrimSpace(q.Get("gt_amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.Filter{}, err
		}
		f.MinAmount = &core.Money{Cents: cents}
	}
	if v := strings.TrimSpace(q.Get("lt_amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.Filter{}, err
		}
		f.MaxAmount = &core.Money{Cents: cents}
	}

	if err := f.Validate(); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}
