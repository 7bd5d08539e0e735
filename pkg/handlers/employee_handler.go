package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/directory"
	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// EmployeeHandler serves the employee directory endpoints.
type EmployeeHandler struct {
	directory directory.Directory
	authMW    *auth.Middleware
	logger    *zap.Logger
}

// NewEmployeeHandler creates an employee handler.
func NewEmployeeHandler(dir directory.Directory, authMW *auth.Middleware, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		directory: dir,
		authMW:    authMW,
		logger:    logger,
	}
}

// RegisterRoutes registers the employee routes on the given mux.
func (h *EmployeeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/employees", h.authMW.RequireAuth(h.List))
	mux.HandleFunc("GET /api/employees/new-hires", h.authMW.RequireAuth(h.ListNewHires))
	mux.HandleFunc("GET /api/employees/{id}", h.authMW.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/employees", h.authMW.RequireAuth(h.Create))
	mux.HandleFunc("PUT /api/employees/{id}", h.authMW.RequireAuth(h.Update))
}

// List handles GET /api/employees. An optional q parameter switches to a
// name-or-email search.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		employees []*models.EmployeeProfile
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		employees, err = h.directory.SearchEmployees(r.Context(), q)
	} else {
		employees, err = h.directory.ListEmployees(r.Context())
	}
	if err != nil {
		h.logger.Error("Employee listing failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch employees")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

// ListNewHires handles GET /api/employees/new-hires.
func (h *EmployeeHandler) ListNewHires(w http.ResponseWriter, r *http.Request) {
	employees, err := h.directory.ListNewHires(r.Context())
	if err != nil {
		h.logger.Error("New hire listing failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch employees")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

// Get handles GET /api/employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	employee, err := h.directory.GetEmployee(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("Employee lookup failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch employee")
		return
	}
	if employee == nil {
		_ = ErrorResponse(w, http.StatusNotFound, "Employee not found")
		return
	}

	_ = WriteJSON(w, http.StatusOK, employee)
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Name == "" || input.Email == "" || input.Department == "" || input.Role == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Name, email, department, and role are required")
		return
	}

	employee, err := h.directory.CreateEmployee(r.Context(), &input)
	if err != nil {
		h.logger.Error("Employee creation failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	_ = WriteJSON(w, http.StatusCreated, employee)
}

// Update handles PUT /api/employees/{id}. Empty input fields are left
// unchanged.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	employee, err := h.directory.UpdateEmployee(r.Context(), r.PathValue("id"), &input)
	if err != nil {
		h.logger.Error("Employee update failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update employee")
		return
	}
	if employee == nil {
		_ = ErrorResponse(w, http.StatusNotFound, "Employee not found")
		return
	}

	_ = WriteJSON(w, http.StatusOK, employee)
}
