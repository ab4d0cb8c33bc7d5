package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/nadmax/servicetime/internal/dashboard"
	"github.com/nadmax/servicetime/internal/httputil"
	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/nadmax/servicetime/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type API struct {
	svc    *service.Service
	mux    *http.ServeMux
	webDir string
}

type AddModelRequest struct {
	Model string               `json:"model"`
	Parts inventory.ModelStock `json:"parts"`
}

type ConsumeRequest struct {
	ServiceID string         `json:"service_id"`
	Parts     map[string]int `json:"parts"`
}

// NewAPI registers every route. Static files are served from webDir.
func NewAPI(svc *service.Service, webDir string) *API {
	if webDir == "" {
		webDir = "./web"
	}

	api := &API{
		svc:    svc,
		mux:    http.NewServeMux(),
		webDir: webDir,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/predict", a.handlePredict)
	a.mux.HandleFunc("/api/tasks", a.handleTasks)
	a.mux.HandleFunc("/api/inventory", a.handleInventory)
	a.mux.HandleFunc("/api/inventory/", a.handleInventoryByModel)
	a.mux.HandleFunc("/api/parts/check", a.handlePartsCheck)
	a.mux.HandleFunc("/api/system/status", a.handleSystemStatus)
	a.mux.HandleFunc("/api/queue", a.handleQueue)
	a.mux.HandleFunc("/api/services/", a.handleServiceByID)
	a.mux.HandleFunc("/health", a.handleHealth)
	a.mux.Handle("/metrics", promhttp.Handler())

	dash := dashboard.NewDashboard(a.svc.Tracker(), a.svc.History())
	a.mux.HandleFunc("/api/dashboard/stats", dash.GetStats)
	a.mux.HandleFunc("/api/dashboard/history", dash.GetRecentServices)
	a.mux.HandleFunc("/api/dashboard/service-stats", dash.GetServiceStats)
	a.mux.HandleFunc("/api/history/service/", dash.GetService)
	a.mux.HandleFunc("/api/history/model/", dash.GetServicesByModel)
	a.mux.HandleFunc("/api/history/parts/", dash.GetPartsConsumption)

	fs := http.FileServer(http.Dir(a.webDir))
	a.mux.Handle("/", fs)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// mapServiceError converts an orchestrator error into a status code and a
// message that is safe to show to callers.
func mapServiceError(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, inventory.ErrModelNotFound):
		return http.StatusNotFound, "Model not found"
	case errors.Is(err, inventory.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidModel):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, inventory.ErrPersistence):
		return http.StatusInternalServerError, "Failed to persist inventory"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("failed to close request body: %v", err)
		}
	}()

	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(r)
	if err != nil {
		httputil.WriteFailure(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		httputil.WriteFailure(w, "No data received", http.StatusBadRequest)
		return
	}

	var req service.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			httputil.WriteFailure(w, "Invalid numeric value in input fields", http.StatusBadRequest)
			return
		}
		httputil.WriteFailure(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	prediction, err := a.svc.Predict(r.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			httputil.WriteFailure(w, verr.Message, http.StatusBadRequest)
			return
		}

		log.Printf("prediction failed: %v", err)
		httputil.WriteFailure(w, "Prediction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, prediction, http.StatusOK)
}

func (a *API) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	httputil.WriteJSON(w, a.svc.Tasks(), http.StatusOK)
}

func (a *API) handleInventory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSON(w, a.svc.Inventory(), http.StatusOK)
	case http.MethodPost:
		a.addModel(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) addModel(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		httputil.WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req AddModelRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := a.svc.AddModel(r.Context(), req.Model, req.Parts); err != nil {
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	model, err := a.svc.InventoryForModel(req.Model)
	if err != nil {
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, model, http.StatusCreated)
}

func (a *API) handleInventoryByModel(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/inventory/"), "/")
	model := parts[0]
	if model == "" {
		httputil.WriteJSONError(w, "Car model is required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		a.getModelInventory(w, model)
	case len(parts) == 2 && parts[1] == "consume" && r.Method == http.MethodPost:
		a.consumeParts(w, r, model)
	case len(parts) <= 2:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) getModelInventory(w http.ResponseWriter, model string) {
	inv, err := a.svc.InventoryForModel(model)
	if err != nil {
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, inv, http.StatusOK)
}

func (a *API) consumeParts(w http.ResponseWriter, r *http.Request, model string) {
	body, err := readBody(r)
	if err != nil {
		httputil.WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ConsumeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Parts) == 0 {
		httputil.WriteJSONError(w, "At least one part is required", http.StatusBadRequest)
		return
	}

	result, err := a.svc.ConsumeParts(r.Context(), req.ServiceID, model, req.Parts)
	if err != nil {
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, result, http.StatusOK)
}

func (a *API) handlePartsCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	model := q.Get("car_model")
	if model == "" {
		httputil.WriteJSONError(w, "Missing required field: car_model", http.StatusBadRequest)
		return
	}

	var tasks []string
	for _, t := range strings.Split(q.Get("tasks"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}

	httputil.WriteJSON(w, a.svc.CheckParts(model, q.Get("service_type"), tasks), http.StatusOK)
}

func (a *API) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := a.svc.SystemStatus(r.Context())
	if err != nil {
		log.Printf("failed to read system status: %v", err)
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, snapshot, http.StatusOK)
}

func (a *API) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := a.svc.Queue(r.Context())
	if err != nil {
		log.Printf("failed to list queue: %v", err)
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, entries, http.StatusOK)
}

func (a *API) handleServiceByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/services/"), "/")
	if len(parts) != 2 || parts[1] != "complete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := parts[0]
	if serviceID == "" {
		httputil.WriteJSONError(w, "Service ID is required", http.StatusBadRequest)
		return
	}

	completion, err := a.svc.Complete(r.Context(), serviceID)
	if err != nil {
		log.Printf("failed to complete service %s: %v", serviceID, err)
		status, msg := mapServiceError(err)
		httputil.WriteJSONError(w, msg, status)
		return
	}

	httputil.WriteJSON(w, completion, http.StatusOK)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, a.svc.Health(r.Context()), http.StatusOK)
}
