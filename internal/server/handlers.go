package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/settledb/settle-db/internal/executor"
	"github.com/settledb/settle-db/internal/storage"
	"github.com/settledb/settle-db/internal/types"
)

// Handler exposes the engine over REST.
type Handler struct {
	Exec        *executor.Executor
	Store       *storage.Store
	Log         *zap.SugaredLogger
	SnapshotDir string
}

// RegisterRoutes attaches every endpoint to the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/query", h.Query).Methods(http.MethodPost)
	router.HandleFunc("/api/tables", h.ListTables).Methods(http.MethodGet)
	router.HandleFunc("/api/tables/{name}", h.DescribeTable).Methods(http.MethodGet)
	router.HandleFunc("/api/tables/{name}/rows", h.SelectRows).Methods(http.MethodGet)
	router.HandleFunc("/api/tables/{name}/rows", h.InsertRow).Methods(http.MethodPost)
	router.HandleFunc("/api/tables/{name}/rows", h.UpdateRows).Methods(http.MethodPut)
	router.HandleFunc("/api/tables/{name}/rows", h.DeleteRows).Methods(http.MethodDelete)
	router.HandleFunc("/api/join", h.Join).Methods(http.MethodPost)
	router.HandleFunc("/api/export", h.Export).Methods(http.MethodPost)
	router.HandleFunc("/api/merchants/report", h.MerchantReport).Methods(http.MethodGet)
}

// requestLogging tags each request with an id and logs its outcome.
func requestLogging(log *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			next.ServeHTTP(w, r)

			log.Infow("request handled",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, executor.Result{Success: false, Message: message})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Payment Settlement RDBMS API is running",
	})
}

// Query executes raw statement text. The envelope carries success or
// failure; the HTTP status is 200 either way.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SQL == "" {
		writeFailure(w, http.StatusBadRequest, "Missing SQL query in request body")
		return
	}

	writeJSON(w, http.StatusOK, h.Exec.Execute(req.SQL))
}

func (h *Handler) ListTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Exec.ListTables())
}

func (h *Handler) DescribeTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	writeJSON(w, http.StatusOK, h.Exec.Describe(name))
}

// SelectRows filters a table by query parameters. Each parameter value is
// run through literal normalization, so ?id=42 filters on the integer 42
// and ?active=true on the boolean.
func (h *Handler) SelectRows(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var conditions types.Row
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if conditions == nil {
			conditions = types.Row{}
		}
		conditions[key] = types.NormalizeLiteral(values[0])
	}

	rows, err := h.Store.SelectRows(name, conditions, nil)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, executor.Result{
		Success:  true,
		Data:     rows,
		RowCount: len(rows),
	})
}

func (h *Handler) InsertRow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var row types.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil || len(row) == 0 {
		writeFailure(w, http.StatusBadRequest, "Missing row data in request body")
		return
	}

	rowID, err := h.Store.InsertRow(name, row)
	if errors.Is(err, storage.ErrTableNotFound) {
		writeFailure(w, http.StatusNotFound, "Table '"+name+"' does not exist")
		return
	}
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, executor.Result{
		Success:    true,
		Message:    "Row inserted successfully",
		InsertedID: &rowID,
	})
}

func (h *Handler) UpdateRows(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Conditions types.Row `json:"conditions"`
		Updates    types.Row `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Conditions == nil || req.Updates == nil {
		writeFailure(w, http.StatusBadRequest, "Missing conditions or updates in request body")
		return
	}

	if len(req.Conditions) == 0 {
		writeFailure(w, http.StatusBadRequest, "UPDATE without conditions is not allowed")
		return
	}

	affected, err := h.Store.UpdateRows(name, req.Conditions, req.Updates)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, executor.Result{
		Success:      true,
		Message:      updatedMessage(affected),
		AffectedRows: &affected,
	})
}

func (h *Handler) DeleteRows(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Conditions types.Row `json:"conditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Conditions == nil {
		writeFailure(w, http.StatusBadRequest, "Missing conditions in request body")
		return
	}

	if len(req.Conditions) == 0 {
		writeFailure(w, http.StatusBadRequest, "DELETE without conditions is not allowed")
		return
	}

	affected, err := h.Store.DeleteRows(name, req.Conditions)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, executor.Result{
		Success:      true,
		Message:      deletedMessage(affected),
		AffectedRows: &affected,
	})
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeftTable  string    `json:"left_table"`
		RightTable string    `json:"right_table"`
		LeftKey    string    `json:"left_key"`
		RightKey   string    `json:"right_key"`
		Columns    []string  `json:"columns"`
		Conditions types.Row `json:"conditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.LeftTable == "" || req.RightTable == "" || req.LeftKey == "" || req.RightKey == "" {
		writeFailure(w, http.StatusBadRequest,
			"Missing required fields: left_table, right_table, left_key, right_key")
		return
	}

	result := h.Exec.Join(req.LeftTable, req.RightTable, req.LeftKey, req.RightKey, req.Columns, req.Conditions)
	writeJSON(w, http.StatusOK, result)
}

// Export snapshots every table into the configured Parquet directory.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	if err := h.Store.ExportParquet(h.SnapshotDir); err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, executor.Result{
		Success: true,
		Message: "Exported snapshot to " + h.SnapshotDir,
	})
}

// MerchantReport aggregates transaction totals per merchant.
func (h *Handler) MerchantReport(w http.ResponseWriter, _ *http.Request) {
	merchants, err := h.Store.SelectRows("merchants", nil, nil)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	transactions, err := h.Store.SelectRows("transactions", nil, nil)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	type totals struct {
		TotalAmount      float64 `json:"total_amount"`
		TransactionCount int     `json:"transaction_count"`
		PendingCount     int     `json:"pending_count"`
		CompletedCount   int     `json:"completed_count"`
	}

	byMerchant := make(map[string]*totals)
	for _, txn := range transactions {
		key := txn["merchant_id"].Key()
		t := byMerchant[key]
		if t == nil {
			t = &totals{}
			byMerchant[key] = t
		}

		if amount, ok := txn["amount"].Float(); ok {
			t.TotalAmount += amount
		}
		t.TransactionCount++

		switch strings.ToLower(txn["status"].AsString()) {
		case "pending":
			t.PendingCount++
		case "completed":
			t.CompletedCount++
		}
	}

	report := make([]map[string]interface{}, 0, len(merchants))
	for _, merchant := range merchants {
		t := byMerchant[merchant["id"].Key()]
		if t == nil {
			t = &totals{}
		}

		report = append(report, map[string]interface{}{
			"merchant_id":       merchant["id"],
			"merchant_name":     merchant["name"],
			"email":             merchant["email"],
			"status":            merchant["status"],
			"total_amount":      t.TotalAmount,
			"transaction_count": t.TransactionCount,
			"pending_count":     t.PendingCount,
			"completed_count":   t.CompletedCount,
		})
	}

	writeJSON(w, http.StatusOK, executor.Result{
		Success:  true,
		Data:     report,
		RowCount: len(report),
	})
}

func updatedMessage(n int) string {
	return fmt.Sprintf("Updated %d row(s)", n)
}

func deletedMessage(n int) string {
	return fmt.Sprintf("Deleted %d row(s)", n)
}
