package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListingsHandler struct {
	Catalog *catalog.Service
	Log     *zap.Logger
}

type premadeReq struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	ImageLink   *string  `json:"image_link"`
	Price       *float64 `json:"price"`
}

func (p premadeReq) draft() catalog.Draft {
	return catalog.Draft{Title: p.Title, Description: p.Description, ImageLink: p.ImageLink, Price: p.Price}
}

type customReq struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	ImageLink     *string  `json:"image_link"`
	StartingPrice *float64 `json:"starting_price"`
}

func (c customReq) draft() catalog.Draft {
	return catalog.Draft{Title: c.Title, Description: c.Description, ImageLink: c.ImageLink, Price: c.StartingPrice}
}

// Register mounts the listing routes. Reads are public, writes need admin.
func (h *ListingsHandler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/listings", func(r chi.Router) {
		r.Get("/premade", h.listPremade)
		r.Get("/custom", h.listCustom)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/premade", h.createPremade)
			r.Put("/premade/{id}", h.updatePremade)
			r.Delete("/premade/{id}", h.deletePremade)
			r.Post("/custom", h.createCustom)
			r.Put("/custom/{id}", h.updateCustom)
			r.Delete("/custom/{id}", h.deleteCustom)
		})
	})
}

func (h *ListingsHandler) listPremade(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ls, err := h.Catalog.ListPremade(ctx, catalog.ParseSort(r.URL.Query().Get("sort")))
	if err != nil {
		writeError(w, r, h.Log, err, "Error fetching listings")
		return
	}
	writeOK(w, http.StatusOK, envelope{"listings": ls})
}

func (h *ListingsHandler) createPremade(w http.ResponseWriter, r *http.Request) {
	var req premadeReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Catalog.CreatePremade(ctx, req.draft())
	if err != nil {
		writeError(w, r, h.Log, err, "Error creating listing")
		return
	}
	writeOK(w, http.StatusCreated, envelope{"listing": l})
}

func (h *ListingsHandler) updatePremade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	var req premadeReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Catalog.UpdatePremade(ctx, id, req.draft())
	if err != nil {
		writeError(w, r, h.Log, err, "Error updating listing")
		return
	}
	writeOK(w, http.StatusOK, envelope{"listing": l})
}

func (h *ListingsHandler) deletePremade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeletePremade(ctx, id); err != nil {
		writeError(w, r, h.Log, err, "Error deleting listing")
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Listing deleted successfully"})
}

func (h *ListingsHandler) listCustom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ls, err := h.Catalog.ListCustom(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Error fetching custom listings")
		return
	}
	writeOK(w, http.StatusOK, envelope{"listings": ls})
}

func (h *ListingsHandler) createCustom(w http.ResponseWriter, r *http.Request) {
	var req customReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Catalog.CreateCustom(ctx, req.draft())
	if err != nil {
		writeError(w, r, h.Log, err, "Error creating custom listing")
		return
	}
	writeOK(w, http.StatusCreated, envelope{"listing": l})
}

func (h *ListingsHandler) updateCustom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}
	var req customReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Catalog.UpdateCustom(ctx, id, req.draft())
	if err != nil {
		writeError(w, r, h.Log, err, "Error updating custom listing")
		return
	}
	writeOK(w, http.StatusOK, envelope{"listing": l})
}

func (h *ListingsHandler) deleteCustom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteCustom(ctx, id); err != nil {
		writeError(w, r, h.Log, err, "Error deleting custom listing")
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Listing deleted successfully"})
}
