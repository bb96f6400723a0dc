package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

// productRequest requires price to be present; a zero value is a valid price.
type productRequest struct {
	models.Product
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func productErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Product not found")
	}
	return err
}

func categoryErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Category not found")
	}
	return err
}

// ListProducts supports ?offers=true, ?category=<id> and ?available=true|false.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.ProductFilter
	f.OffersOnly = q.Get("offers") == "true"
	if c := q.Get("category"); c != "" {
		id, err := primitive.ObjectIDFromHex(c)
		if err != nil {
			h.fail(w, r, badRequest("Invalid category"))
			return
		}
		f.CategoryID = &id
	}
	if q.Has("available") {
		avail := q.Get("available") == "true"
		f.Available = &avail
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	products, err := h.Store.ListProducts(ctx, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.Store.ProductWithCategory(ctx, id)
	if err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	req := productRequest{Product: models.Product{IsAvailable: true}}
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p := req.Product
	p.Price = *req.Price
	if p.Tags == nil {
		p.Tags = []string{}
	}

	ctx, cancel := h.ctxFrom(ctx)
	defer cancel()
	if err := h.Store.CreateProduct(ctx, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", p.ID.Hex()))
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct applies the fields present in the body over the stored product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.Store.ProductByID(ctx, id)
	if err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	created := p.CreatedAt
	if err := h.decode(r, p); err != nil {
		h.fail(w, r, err)
		return
	}
	p.ID, p.CreatedAt = id, created
	if err := h.Store.ReplaceProduct(ctx, p); err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.Store.ToggleAvailability(ctx, id)
	if err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.Store.ProductByID(ctx, id)
	if err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted successfully",
		"product": p,
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	cats, err := h.Store.ListCategories(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// GetCategory returns the category with its available products.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Store.CategoryByID(ctx, id)
	if err != nil {
		h.fail(w, r, categoryErr(err))
		return
	}
	avail := true
	products, err := h.Store.ListProducts(ctx, store.ProductFilter{CategoryID: &id, Available: &avail})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c, "products": products})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := h.decode(r, &c); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Store.CreateCategory(ctx, &c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = conflict("Category name already exists")
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Store.CategoryByID(ctx, id)
	if err != nil {
		h.fail(w, r, categoryErr(err))
		return
	}
	created := c.CreatedAt
	if err := h.decode(r, c); err != nil {
		h.fail(w, r, err)
		return
	}
	c.ID, c.CreatedAt = id, created
	if err := h.Store.ReplaceCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = conflict("Category name already exists")
		}
		h.fail(w, r, categoryErr(err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory hides the category from listings. Products keep their reference.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.Store.DeactivateCategory(ctx, id); err != nil {
		h.fail(w, r, categoryErr(err))
		return
	}
	c, err := h.Store.CategoryByID(ctx, id)
	if err != nil {
		h.fail(w, r, categoryErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category deactivated", "category": c})
}
