package receipt

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleScan handles a captured receipt photo upload
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 50MB to handle high-resolution phone photos)
	maxFormSize := int64(50 << 20) // 50MB
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No photo was selected. Please capture or choose a photo to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	// Determine content type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		default:
			contentType = "application/octet-stream"
		}
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	result, err := s.service.ScanReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error scanning receipt", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLedger returns the current ledger state
func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Ledger())
}

// itemUpdateRequest carries one field edit or quantity adjustment. The
// review screen sends exactly one of these per change.
type itemUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	Price         *string `json:"price,omitempty"`
	QuantityDelta *int    `json:"quantity_delta,omitempty"`
}

// handleUpdateItem applies a single edit to a ledger item
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		corsError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	var req itemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var view LedgerView
	switch {
	case req.Name != nil:
		view, err = s.service.UpdateItemName(index, *req.Name)
	case req.Price != nil:
		view, err = s.service.UpdateItemPrice(index, *req.Price)
	case req.QuantityDelta != nil:
		view, err = s.service.AdjustItemQuantity(index, *req.QuantityDelta)
	default:
		corsError(w, "No update field provided", http.StatusBadRequest)
		return
	}
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleDeleteItem removes one ledger item
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		corsError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	view, err := s.service.DeleteItem(index)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleResetLedger discards edits and reverts to the original scan
func (s *Server) handleResetLedger(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.ResetLedger()
	if err != nil {
		slog.Error("Error resetting ledger", "error", err)
		corsError(w, "Error resetting ledger", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// mealPlanRequest selects the plan length. Items are optional: when the
// review screen hands its current items forward they take precedence over
// the stored ledger.
type mealPlanRequest struct {
	Days  int    `json:"days"`
	Items []Item `json:"items,omitempty"`
}

// handleMealPlan generates a meal plan from the ledger items
func (s *Server) handleMealPlan(w http.ResponseWriter, r *http.Request) {
	var req mealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := s.service.MealPlan(req.Items, req.Days)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}

// handleHistory returns the recent receipts list
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.History())
}

// handleRemoveReceipt deletes one receipt from the history
func (s *Server) handleRemoveReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Receipt ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.RemoveReceipt(id); err != nil {
		slog.Error("Error removing receipt", "id", id, "error", err)
		corsError(w, "Error removing receipt", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
