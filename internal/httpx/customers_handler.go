package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CustomersHandler struct {
	Pipeline *pipeline.Service
	Log      *zap.Logger
}

type createCustomerReq struct {
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	PipelineID  *int    `json:"pipeline_id"`
}

type updateCustomerReq struct {
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Notes       *string `json:"notes"`
}

type moveCustomerReq struct {
	PipelineID *int `json:"pipeline_id"`
}

type stepCustomerReq struct {
	Direction pipeline.Direction `json:"direction"`
}

// Register mounts the customer routes. Every route requires an admin.
func (h *CustomersHandler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.list)
		r.Get("/pipeline", h.stages)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Put("/{id}/pipeline", h.move)
		r.Put("/{id}/pipeline/step", h.step)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Pipeline.Board(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Error fetching customers")
		return
	}
	writeOK(w, http.StatusOK, envelope{"customers": b.Customers, "customersByStage": b.ByStage})
}

func (h *CustomersHandler) stages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	stages, err := h.Pipeline.ListStages(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Error fetching pipeline stages")
		return
	}
	writeOK(w, http.StatusOK, envelope{"stages": stages})
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Pipeline.CreateCustomer(ctx, req.Name, req.ContactInfo, req.PipelineID)
	if err != nil {
		writeError(w, r, h.Log, err, "Error creating customer")
		return
	}
	writeOK(w, http.StatusCreated, envelope{"customer": c})
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	var req updateCustomerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Pipeline.UpdateCustomer(ctx, id, req.Name, req.ContactInfo, req.Notes)
	if err != nil {
		writeError(w, r, h.Log, err, "Error updating customer")
		return
	}
	writeOK(w, http.StatusOK, envelope{"customer": c})
}

func (h *CustomersHandler) move(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	var req moveCustomerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	stageID := 0
	if req.PipelineID != nil {
		stageID = *req.PipelineID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, _, err := h.Pipeline.MoveCustomer(ctx, id, stageID)
	if err != nil {
		writeError(w, r, h.Log, err, "Error moving customer")
		return
	}
	writeOK(w, http.StatusOK, envelope{"customer": c})
}

func (h *CustomersHandler) step(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	var req stepCustomerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, _, err := h.Pipeline.StepCustomer(ctx, id, req.Direction)
	if err != nil {
		writeError(w, r, h.Log, err, "Error moving customer")
		return
	}
	writeOK(w, http.StatusOK, envelope{"customer": c})
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Pipeline.DeleteCustomer(ctx, id); err != nil {
		writeError(w, r, h.Log, err, "Error deleting customer")
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Customer deleted successfully"})
}

// pathID parses the {id} route parameter. Ids are Postgres serials, so
// anything outside int4 is rejected here rather than at encode time.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return int(id), nil
}
