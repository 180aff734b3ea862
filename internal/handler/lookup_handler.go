package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LookupHandler struct {
	lookupService service.LookupService
}

func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

func (h *LookupHandler) RegisterRoutes(router *gin.RouterGroup) {
	lookups := router.Group("/lookups", middleware.RequireAuth())
	{
		lookups.GET("/options", h.GetFormOptions)
		lookups.GET("/products", h.SearchProducts)
		lookups.GET("/customers", h.SearchCustomers)
	}
}

// GetFormOptions returns every dropdown used by the document forms
// @Summary      Form dropdown options
// @Tags         lookups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.FormOptions}
// @Router       /lookups/options [get]
func (h *LookupHandler) GetFormOptions(c *gin.Context) {
	opts, err := h.lookupService.FormOptions(c.Request.Context())
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, opts))
}

// SearchProducts autocompletes the product directory by code or name
// @Summary      Search products
// @Tags         lookups
// @Produce      json
// @Security     BearerAuth
// @Param        q  query  string  true  "Search text"
// @Success      200  {object}  response.Response{data=[]model.Product}
// @Router       /lookups/products [get]
func (h *LookupHandler) SearchProducts(c *gin.Context) {
	products, err := h.lookupService.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// SearchCustomers autocompletes the customer directory by code or name
// @Summary      Search customers
// @Tags         lookups
// @Produce      json
// @Security     BearerAuth
// @Param        q  query  string  true  "Search text"
// @Success      200  {object}  response.Response{data=[]model.Customer}
// @Router       /lookups/customers [get]
func (h *LookupHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.lookupService.SearchCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customers))
}
