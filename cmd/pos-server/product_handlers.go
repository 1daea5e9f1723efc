package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/caja-pos/internal/httpx"
	"github.com/MikeMC777/caja-pos/internal/product"
)

func productQuery(c *gin.Context, activeOnly bool) product.Query {
	return product.Query{
		ActiveOnly: activeOnly,
		Q:          strings.TrimSpace(c.Query("q")),
		Category:   strings.TrimSpace(c.Query("category")),
	}
}

// @Summary      Catalog
// @Description  Active products ordered by name, optionally filtered by name and category.
// @Tags         products
// @Produce      json
// @Param        q         query     string  false  "name contains"
// @Param        category  query     string  false  "exact category"
// @Success      200       {object}  product.ListResponse
// @Failure      502       {object}  product.HTTPError
// @Router       /api/products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := productQuery(c, true)
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			storeError(c, "product.list", err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Category: q.Category, Items: items})
	}
}

// @Summary      All products
// @Description  Every product, active or not.
// @Tags         admin
// @Produce      json
// @Param        q         query     string  false  "name contains"
// @Param        category  query     string  false  "exact category"
// @Success      200       {object}  product.ListResponse
// @Failure      403       {object}  product.HTTPError
// @Router       /api/admin/products [get]
func adminListProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := productQuery(c, false)
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			storeError(c, "product.list", err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Category: q.Category, Items: items})
	}
}

// @Summary      Create product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      product.SaveProductRequest  true  "Product"
// @Success      201   {object}  product.Product
// @Failure      400   {object}  product.HTTPError
// @Failure      403   {object}  product.HTTPError
// @Router       /api/admin/products [post]
func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.SaveProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
			return
		}
		p, err := req.ToProduct()
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			storeError(c, "product.create", err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary      Update product
// @Description  Replaces every editable field.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                         true  "Product ID"
// @Param        body  body      product.SaveProductRequest  true  "Product"
// @Success      200   {object}  product.Product
// @Failure      400   {object}  product.HTTPError
// @Failure      404   {object}  product.HTTPError
// @Router       /api/admin/products/{id} [put]
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req product.SaveProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
			return
		}
		p, err := req.ToProduct()
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		p.ID = id
		if err := repo.Update(c.Request.Context(), p); err != nil {
			storeError(c, "product.update", err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Delete product
// @Tags     admin
// @Param    id   path  int  true  "Product ID"
// @Success  204
// @Failure  404  {object}  product.HTTPError
// @Router   /api/admin/products/{id} [delete]
func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		deleted, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			storeError(c, "product.delete", err)
			return
		}
		if !deleted {
			storeError(c, "product.delete", product.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
