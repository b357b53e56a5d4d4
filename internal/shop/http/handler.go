package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirbootoo/minishop-test/internal/shop"
	"github.com/sirbootoo/minishop-test/internal/shop/geo"
	"github.com/sirbootoo/minishop-test/internal/shop/invoice"
	"github.com/sirbootoo/minishop-test/internal/shop/pagination"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ShopService interface {
	ListProducts(ctx context.Context, page int, requester *geo.Coordinate) ([]shop.AnnotatedProduct, pagination.Meta, error)
	ListIndex(ctx context.Context, page int) ([]shop.Product, pagination.Meta, error)
	GetProduct(ctx context.Context, id int64) (shop.Product, error)

	ListComments(ctx context.Context, productID int64, page int) ([]shop.Comment, pagination.Meta, error)
	AddComment(ctx context.Context, nc shop.NewComment) (shop.Comment, error)

	Cart(ctx context.Context, userID int64) ([]shop.CartItem, error)
	AddToCart(ctx context.Context, userID, productID int64) error
	RemoveFromCart(ctx context.Context, userID, productID int64) error
	Checkout(ctx context.Context, userID int64) ([]shop.CartItem, float64, error)

	CreateOrder(ctx context.Context, userID int64) (shop.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]shop.Order, error)
	OrderForUser(ctx context.Context, orderID, userID int64) (shop.Order, error)
}

type Handler struct {
	service    ShopService
	renderer   invoice.Renderer
	invoiceDir string
	logger     *slog.Logger
}

func NewHandler(svc ShopService, invoiceDir string, logger *slog.Logger) *Handler {
	return &Handler{
		service:    svc,
		invoiceDir: invoiceDir,
		logger:     logger,
	}
}

type errorResponse struct {
	Error string `json:"error" example:"record not found"`
}

type fieldError struct {
	Field   string `json:"field" example:"body"`
	Message string `json:"message" example:"body is required"`
}

// View models, one per rendered view. The former string-keyed data bags of
// the server-rendered pages map onto these typed payloads.

type indexView struct {
	PageTitle string         `json:"page_title" example:"Shop"`
	Path      string         `json:"path" example:"/"`
	Prods     []shop.Product `json:"prods"`
	pagination.Meta
}

type productListView struct {
	PageTitle string                  `json:"page_title" example:"All Products"`
	Path      string                  `json:"path" example:"/products"`
	Prods     []shop.AnnotatedProduct `json:"prods"`
	pagination.Meta
}

type productDetailView struct {
	PageTitle string       `json:"page_title"`
	Path      string       `json:"path" example:"/products"`
	Product   shop.Product `json:"product"`
}

type cartView struct {
	PageTitle string          `json:"page_title" example:"Your Cart"`
	Path      string          `json:"path" example:"/cart"`
	Products  []shop.CartItem `json:"products"`
}

type checkoutView struct {
	PageTitle string          `json:"page_title" example:"Checkout"`
	Path      string          `json:"path" example:"/checkout"`
	Products  []shop.CartItem `json:"products"`
	TotalSum  float64         `json:"total_sum" example:"24.98"`
}

type ordersView struct {
	PageTitle string       `json:"page_title" example:"Your Orders"`
	Path      string       `json:"path" example:"/orders"`
	Orders    []shop.Order `json:"orders"`
}

type commentListView struct {
	PageTitle string         `json:"page_title" example:"All Comments"`
	Path      string         `json:"path" example:"/comments"`
	ProductID int64          `json:"product_id"`
	Comments  []shop.Comment `json:"comments"`
	pagination.Meta
}

type createCommentRequest struct {
	Body    string `json:"body" binding:"required"`
	ReplyTo *int64 `json:"reply_to,omitempty"`
}

type commentFormView struct {
	PageTitle        string               `json:"page_title" example:"Add Comment"`
	ProductID        int64                `json:"product_id"`
	HasError         bool                 `json:"has_error"`
	ValidationErrors []fieldError         `json:"validation_errors"`
	Submitted        createCommentRequest `json:"submitted"`
}

// GetIndex godoc
// @Summary      Home page listing
// @Tags         shop
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  indexView
// @Failure      500   {object}  errorResponse
// @Router       / [get]
func (h *Handler) GetIndex(c *gin.Context) {
	page := pagination.ParsePage(c.Query("page"))

	prods, meta, err := h.service.ListIndex(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, indexView{
		PageTitle: "Shop",
		Path:      "/",
		Prods:     prods,
		Meta:      meta,
	})
}

// GetProducts godoc
// @Summary      List products sorted by distance to the requester
// @Tags         shop
// @Produce      json
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        X-User-ID  header    int  true   "Authenticated user"
// @Success      200        {object}  productListView
// @Failure      401        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /products [get]
func (h *Handler) GetProducts(c *gin.Context) {
	page := pagination.ParsePage(c.Query("page"))
	user, _ := currentUser(c)

	var requester *geo.Coordinate
	if user.Lat != nil && user.Long != nil {
		requester = &geo.Coordinate{Lat: *user.Lat, Long: *user.Long}
	}

	prods, meta, err := h.service.ListProducts(c.Request.Context(), page, requester)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, productListView{
		PageTitle: "All Products",
		Path:      "/products",
		Prods:     prods,
		Meta:      meta,
	})
}

// GetProduct godoc
// @Summary      Product detail
// @Tags         shop
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  productDetailView
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, productDetailView{
		PageTitle: product.Title,
		Path:      "/products",
		Product:   product,
	})
}

// GetCart godoc
// @Summary      Current user's cart
// @Tags         cart
// @Produce      json
// @Param        X-User-ID  header    int  true  "Authenticated user"
// @Success      200        {object}  cartView
// @Failure      401        {object}  errorResponse
// @Router       /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	user, _ := currentUser(c)

	items, err := h.service.Cart(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, cartView{
		PageTitle: "Your Cart",
		Path:      "/cart",
		Products:  items,
	})
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required" example:"1"`
}

// PostCart godoc
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  int               true  "Authenticated user"
// @Param        body       body    addToCartRequest  true  "Product reference"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /cart [post]
func (h *Handler) PostCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, _ := currentUser(c)
	if err := h.service.AddToCart(c.Request.Context(), user.ID, req.ProductID); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteCartItem godoc
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Param        X-User-ID  header  int  true  "Authenticated user"
// @Param        productId  path    int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /cart/{productId} [delete]
func (h *Handler) DeleteCartItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}

	user, _ := currentUser(c)
	if err := h.service.RemoveFromCart(c.Request.Context(), user.ID, productID); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCheckout godoc
// @Summary      Checkout summary for the current cart
// @Tags         cart
// @Produce      json
// @Param        X-User-ID  header    int  true  "Authenticated user"
// @Success      200        {object}  checkoutView
// @Failure      401        {object}  errorResponse
// @Router       /checkout [get]
func (h *Handler) GetCheckout(c *gin.Context) {
	user, _ := currentUser(c)

	items, total, err := h.service.Checkout(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutView{
		PageTitle: "Checkout",
		Path:      "/checkout",
		Products:  items,
		TotalSum:  total,
	})
}

// PostOrder godoc
// @Summary      Create an order from the current cart
// @Tags         orders
// @Produce      json
// @Param        X-User-ID  header    int  true  "Authenticated user"
// @Success      201        {object}  shop.Order
// @Failure      400        {object}  errorResponse
// @Router       /orders [post]
func (h *Handler) PostOrder(c *gin.Context) {
	user, _ := currentUser(c)

	order, err := h.service.CreateOrder(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, shop.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: shop.ErrEmptyCart.Error()})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders godoc
// @Summary      Order history for the current user
// @Tags         orders
// @Produce      json
// @Param        X-User-ID  header    int  true  "Authenticated user"
// @Success      200        {object}  ordersView
// @Failure      401        {object}  errorResponse
// @Router       /orders [get]
func (h *Handler) GetOrders(c *gin.Context) {
	user, _ := currentUser(c)

	orders, err := h.service.ListOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ordersView{
		PageTitle: "Your Orders",
		Path:      "/orders",
		Orders:    orders,
	})
}

// GetOrderInvoice godoc
// @Summary      PDF invoice for an order
// @Tags         orders
// @Produce      application/pdf
// @Param        X-User-ID  header  int  true  "Authenticated user"
// @Param        id         path    int  true  "Order ID"
// @Success      200
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id}/invoice [get]
func (h *Handler) GetOrderInvoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	user, _ := currentUser(c)
	order, err := h.service.OrderForUser(c.Request.Context(), orderID, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	doc := invoice.NewPDFDocument()
	h.renderer.Render(order, doc)

	name := invoice.FileName(order.ID)
	sink := h.invoiceSink(name)
	defer sink.close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Status(http.StatusOK)

	if err := doc.Output(io.MultiWriter(sink.writer(), c.Writer)); err != nil {
		h.logger.Error("write invoice pdf failed", "order_id", order.ID, "error", err)
	}
}

// invoiceArchive keeps an on-disk copy of every rendered invoice next to the
// response stream. Archive failures never block the download.
type invoiceArchive struct {
	file *os.File
}

func (h *Handler) invoiceSink(name string) *invoiceArchive {
	file, err := os.Create(filepath.Join(h.invoiceDir, name))
	if err != nil {
		h.logger.Error("create invoice file failed", "name", name, "error", err)
		return &invoiceArchive{}
	}
	return &invoiceArchive{file: file}
}

func (a *invoiceArchive) writer() io.Writer {
	if a.file == nil {
		return io.Discard
	}
	return a.file
}

func (a *invoiceArchive) close() {
	if a.file != nil {
		_ = a.file.Close()
	}
}

// GetComments godoc
// @Summary      List comments for a product
// @Tags         comments
// @Produce      json
// @Param        id    path      int  true   "Product ID"
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  commentListView
// @Failure      500   {object}  errorResponse
// @Router       /products/{id}/comments [get]
func (h *Handler) GetComments(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}
	page := pagination.ParsePage(c.Query("page"))

	comments, meta, err := h.service.ListComments(c.Request.Context(), productID, page)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, commentListView{
		PageTitle: "All Comments",
		Path:      "/comments",
		ProductID: productID,
		Comments:  comments,
		Meta:      meta,
	})
}

// PostComment godoc
// @Summary      Comment on a product
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  int                   true  "Authenticated user"
// @Param        id         path    int                   true  "Product ID"
// @Param        body       body    createCommentRequest  true  "Comment"
// @Success      201  {object}  shop.Comment
// @Failure      422  {object}  commentFormView
// @Failure      404  {object}  errorResponse
// @Router       /products/{id}/comments [post]
func (h *Handler) PostComment(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The product id comes from the path, so the error view always has
		// it, and the submitted input is echoed back for correction.
		c.JSON(http.StatusUnprocessableEntity, commentFormView{
			PageTitle:        "Add Comment",
			ProductID:        productID,
			HasError:         true,
			ValidationErrors: fieldErrors(err),
			Submitted:        req,
		})
		return
	}

	user, _ := currentUser(c)
	comment, err := h.service.AddComment(c.Request.Context(), shop.NewComment{
		ProductID: productID,
		UserEmail: user.Email,
		Body:      req.Body,
		ReplyTo:   req.ReplyTo,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func fieldErrors(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "body", Message: "invalid request body"}}
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{
			Field:   fe.Field(),
			Message: fe.Field() + " failed " + fe.Tag() + " validation",
		})
	}
	return out
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shop.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: shop.ErrNotFound.Error()})
	case errors.Is(err, shop.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorResponse{Error: shop.ErrUnauthorized.Error()})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
