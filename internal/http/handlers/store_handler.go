package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/services"
	"quickclean/internal/validate"
)

type StoreHandler struct {
	Catalog *services.CatalogService
	Stats   *services.StatsService
}

// GET /api/stores
func (h *StoreHandler) List(c *fiber.Ctx) error {
	stores, err := h.Catalog.ListStores()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stores": stores})
}

// GET /api/stores/:storeId
func (h *StoreHandler) Detail(c *fiber.Ctx) error {
	st, prods, err := h.Catalog.StoreDetail(c.Params("storeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"store": st, "products": prods})
}

// GET /api/stores/:storeId/products
func (h *StoreHandler) Products(c *fiber.Ctx) error {
	id := c.Params("storeId")
	if _, err := h.Catalog.Stores.Get(id); err != nil {
		return writeError(c, err)
	}
	prods, err := h.Catalog.ListProducts(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"products": prods})
}

// POST /api/stores/:storeId/products
func (h *StoreHandler) AddProduct(c *fiber.Ctx) error {
	var body struct {
		Name        string  `json:"name"`
		Price       *number `json:"price"`
		IsAvailable *bool   `json:"isAvailable"`
		Image       string  `json:"image"`
		Description string  `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	in, err := productInput(body.Name, body.Price.ptr(), body.Image, body.Description)
	if err != nil {
		return writeError(c, err)
	}
	in.IsAvailable = body.IsAvailable
	p, err := h.Catalog.AddProduct(c.Params("storeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "store_id": p.StoreID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": p})
}

func productInput(name string, price *float64, image, desc string) (services.ProductInput, error) {
	ve := &domain.ValidationError{Message: "Invalid product"}
	n, ok := validate.Text(name, 200)
	if !ok {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if !positive(price) {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "price", Message: "price must be a number > 0"})
	}
	if image != "" {
		if _, ok := validate.URL(image); !ok {
			ve.Fields = append(ve.Fields, domain.FieldError{Field: "image", Message: "image must be a URL"})
		}
	}
	if len([]rune(desc)) > 1000 {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "description", Message: "description must be at most 1000 characters"})
	}
	if len(ve.Fields) > 0 {
		return services.ProductInput{}, ve
	}
	return services.ProductInput{Name: n, Price: *price, Image: image, Description: desc}, nil
}

// POST /api/stores/:id/react
func (h *StoreHandler) React(c *fiber.Ctx) error {
	reaction, err := reactionBody(c)
	if err != nil {
		return writeError(c, err)
	}
	st, err := h.Stats.ReactStore(c.Params("id"), reaction)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stats": st})
}

// GET /api/stores/:id/stats
func (h *StoreHandler) StatsOf(c *fiber.Ctx) error {
	st, err := h.Stats.StoreStats(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stats": st})
}

func reactionBody(c *fiber.Ctx) (string, error) {
	var body struct {
		Reaction string `json:"reaction"`
	}
	if err := c.BodyParser(&body); err != nil {
		return "", domain.Invalid("reaction", "reaction must be like or dislike")
	}
	r, ok := validate.Reaction(body.Reaction)
	if !ok {
		return "", domain.Invalid("reaction", "reaction must be like or dislike")
	}
	return r, nil
}
