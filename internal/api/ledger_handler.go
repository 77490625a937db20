package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gestaozap/backoffice/internal/export"
	"github.com/gestaozap/backoffice/internal/ledger"
	"github.com/gestaozap/backoffice/internal/models"
)

type LedgerHandler struct {
	repo     *ledger.EntryRepository
	exporter *export.Service
}

func NewLedgerHandler(repo *ledger.EntryRepository, exporter *export.Service) *LedgerHandler {
	return &LedgerHandler{repo: repo, exporter: exporter}
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			http.Error(w, "limit inválido", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var entries []models.LedgerEntry
	var err error
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from != "" && to != "" {
		entries, err = h.repo.ListRange(r.Context(), userID, from, to)
	} else {
		entries, err = h.repo.List(r.Context(), userID, limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var entry models.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry.DataPagamento == "" || entry.Descricao == "" {
		http.Error(w, "data_pagamento e descricao são obrigatórios", http.StatusBadRequest)
		return
	}
	entry.UserID = userID
	if entry.TipoOperacao == "" {
		entry.TipoOperacao = models.TipoFromValor(entry.Valor)
	}

	if err := h.repo.Create(r.Context(), &entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (h *LedgerHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["entryID"], 10, 64)
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	var entry models.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry.ID = id
	entry.UserID = userID
	if entry.TipoOperacao == "" {
		entry.TipoOperacao = models.TipoFromValor(entry.Valor)
	}

	if err := h.repo.Update(r.Context(), &entry); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["entryID"], 10, 64)
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), userID, id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportEntries streams the user's ledger as an XLSX attachment. Optional
// from/to query parameters bound the payment date window.
func (h *LedgerHandler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := h.exporter.ExportLedgerXLSX(r.Context(), userID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="lancamentos.xlsx"`)
	w.Write(data)
}
