package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"delliapp/middleware"
	"delliapp/models"
	"delliapp/report"
	"delliapp/storage"
	"delliapp/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const productImagesBucket = "product-images"

type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	IsAvailable *bool   `json:"is_available"`
	SortOrder   int     `json:"sort_order"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
	IsAvailable *bool    `json:"is_available"`
	SortOrder   *int     `json:"sort_order"`
}

func (r UpdateProductRequest) fields() map[string]any {
	f := map[string]any{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	if r.Price != nil {
		f["price"] = *r.Price
	}
	if r.Category != nil {
		f["category"] = *r.Category
	}
	if r.ImageURL != nil {
		f["image_url"] = *r.ImageURL
	}
	if r.IsAvailable != nil {
		f["is_available"] = *r.IsAvailable
	}
	if r.SortOrder != nil {
		f["sort_order"] = *r.SortOrder
	}
	return f
}

// ListProducts returns the whole catalog, including unavailable products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := store.Products(h.scope(c)).List(c.Request.Context(),
		store.OrderBy("category", false), store.OrderBy("sort_order", false))
	if err != nil {
		h.storeError(c, err, "products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// AddProduct adds a product to the current team's catalog
func (h *Handler) AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		SortOrder:   req.SortOrder,
	}
	products := store.Products(h.scope(c))
	if err := products.Create(ctx, &product); err != nil {
		h.storeError(c, err, "product")
		return
	}
	// the column defaults to true, so an explicit false needs a second write
	if req.IsAvailable != nil && !*req.IsAvailable {
		updated, err := products.Update(ctx, product.ID, map[string]any{"is_available": false})
		if err != nil {
			h.storeError(c, err, "product")
			return
		}
		product = *updated
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added", "product": product})
}

// UpdateProduct edits a product of the current team
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := store.Products(h.scope(c)).Update(c.Request.Context(), c.Param("id"), req.fields())
	if err != nil {
		h.storeError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// DeleteProduct removes a product of the current team
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := store.Products(h.scope(c)).Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage stores the multipart "image" file and points the product at it.
func (h *Handler) UploadProductImage(c *gin.Context) {
	ctx := c.Request.Context()
	products := store.Products(h.scope(c))
	if _, err := products.Get(ctx, c.Param("id")); err != nil {
		h.storeError(c, err, "product")
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'image' is required"})
		return
	}
	if fh.Size > storage.MaxObjectSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": storage.ErrTooLarge.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer f.Close()

	url, err := h.Bucket.Upload(ctx, productImagesBucket, f, fh.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	case errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("upload product image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	product, err := products.Update(ctx, c.Param("id"), map[string]any{"image_url": url})
	if err != nil {
		h.storeError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "image_url": url, "product": product})
}

type ComboItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type ComboRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Price       float64            `json:"price" binding:"required,gt=0"`
	ImageURL    string             `json:"image_url"`
	IsAvailable *bool              `json:"is_available"`
	Items       []ComboItemRequest `json:"items" binding:"required,min=1,dive"`
}

// comboItems checks that every product belongs to the current team.
func (h *Handler) comboItems(c *gin.Context, reqs []ComboItemRequest) ([]models.ComboItem, bool) {
	items := make([]models.ComboItem, 0, len(reqs))
	for _, r := range reqs {
		if _, err := store.Products(h.scope(c)).Get(c.Request.Context(), r.ProductID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found: " + r.ProductID})
			} else {
				h.storeError(c, err, "product")
			}
			return nil, false
		}
		items = append(items, models.ComboItem{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return items, true
}

func (h *Handler) ListCombos(c *gin.Context) {
	combos, err := store.Combos(h.scope(c)).List(c.Request.Context(),
		store.Preload("Items.Product"), store.OrderBy("name", false))
	if err != nil {
		h.storeError(c, err, "combos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(combos), "combos": combos})
}

func (h *Handler) AddCombo(c *gin.Context) {
	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, ok := h.comboItems(c, req.Items)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	combos := store.Combos(h.scope(c))
	combo := models.Combo{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		Items:       items,
	}
	if err := combos.Create(ctx, &combo); err != nil {
		h.storeError(c, err, "combo")
		return
	}
	if req.IsAvailable != nil && !*req.IsAvailable {
		if _, err := combos.Update(ctx, combo.ID, map[string]any{"is_available": false}); err != nil {
			h.storeError(c, err, "combo")
			return
		}
	}
	created, err := combos.Get(ctx, combo.ID, store.Preload("Items.Product"))
	if err != nil {
		h.storeError(c, err, "combo")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Combo added", "combo": created})
}

// UpdateCombo replaces a combo's fields and item list
func (h *Handler) UpdateCombo(c *gin.Context) {
	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, ok := h.comboItems(c, req.Items)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	scope := h.scope(c)
	fields := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"image_url":   req.ImageURL,
	}
	if req.IsAvailable != nil {
		fields["is_available"] = *req.IsAvailable
	}
	if _, err := store.Combos(scope).Update(ctx, c.Param("id"), fields); err != nil {
		h.storeError(c, err, "combo")
		return
	}
	if err := store.ReplaceComboItems(ctx, scope, c.Param("id"), items); err != nil {
		h.storeError(c, err, "combo")
		return
	}
	combo, err := store.Combos(scope).Get(ctx, c.Param("id"), store.Preload("Items.Product"))
	if err != nil {
		h.storeError(c, err, "combo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Combo updated", "combo": combo})
}

func (h *Handler) DeleteCombo(c *gin.Context) {
	if err := store.DeleteCombo(c.Request.Context(), h.scope(c), c.Param("id")); err != nil {
		h.storeError(c, err, "combo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Combo deleted"})
}

// GetShipping returns the team's delivery and storefront settings
func (h *Handler) GetShipping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": middleware.CurrentTeam(c).Settings})
}

// UpdateShipping replaces the team's settings
func (h *Handler) UpdateShipping(c *gin.Context) {
	var req models.TeamSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeliveryFee < 0 || req.MinOrderValue < 0 || req.FreeDeliveryAbove < 0 || req.DeliveryRadiusKm < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Values cannot be negative"})
		return
	}
	team := middleware.CurrentTeam(c)
	updated, err := h.Teams.UpdateSettings(c.Request.Context(), team.ID, req)
	if err != nil {
		h.storeError(c, err, "team")
		return
	}
	h.Cache.Invalidate(c.Request.Context(), team.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated", "settings": updated.Settings})
}

func (h *Handler) ListMembers(c *gin.Context) {
	members, err := store.Members(h.scope(c)).List(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(members), "members": members})
}

type MemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AddMember grants a registered user a role at the current team
func (h *Handler) AddMember(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := models.NormalizeRole(req.Role)
	valid := false
	for _, r := range models.StaffRoles {
		valid = valid || r == role
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid role. Must be one of: %v", models.StaffRoles)})
		return
	}
	ctx := c.Request.Context()
	user, err := h.Profiles.ByEmail(ctx, req.Email)
	if err != nil {
		h.storeError(c, err, "user")
		return
	}
	member, err := store.Members(h.scope(c)).Upsert(ctx, user.ID, role)
	if err != nil {
		h.storeError(c, err, "member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member saved", "member": member})
}

// ExportOrders downloads the team's orders as a spreadsheet
func (h *Handler) ExportOrders(c *gin.Context) {
	opts := []store.Option{store.Preload("Items"), store.OrderBy("created_at", true)}
	if status := c.Query("status"); status != "" {
		opts = append(opts, store.Where("status", status))
	}
	orders, err := store.Orders(h.scope(c)).List(c.Request.Context(), opts...)
	if err != nil {
		h.storeError(c, err, "orders")
		return
	}
	data, err := report.Orders(orders)
	if err != nil {
		h.Log.Error("render export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	name := fmt.Sprintf("orders-%s-%s.xlsx", middleware.CurrentTeam(c).Slug, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
