package handlers

import (
	"errors"
	"log"

	"lavka/internal/models"
	"lavka/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// reviewDateLayout renders review timestamps as DD.MM.YYYY.
const reviewDateLayout = "02.01.2006"

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	reviews  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products/:id/reviews", h.HandleListProductReviews)
}

// RegisterProtectedRoutes registers the routes that require a session token.
// The guard is attached per route so paths that match nothing still 404.
func (h *ReviewHandler) RegisterProtectedRoutes(router fiber.Router, guard fiber.Handler) {
	router.Post("/reviews", guard, h.HandleCreateReview)
}

// CreateReviewRequest represents the request body for review submission.
type CreateReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text      string `json:"text" validate:"required"`
}

// HandleCreateReview submits a review. The author is always the
// authenticated identity from the token; the body carries no user field.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "authentication required",
		})
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing review request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": validationMessage(err),
		})
	}

	reviewID, err := h.reviews.CreateReview(userID, req.ProductID, req.Rating, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": models.ErrProductNotFound.Error(),
			})
		case errors.Is(err, models.ErrInvalidRating):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": models.ErrInvalidRating.Error(),
			})
		}
		log.Printf("Error creating review for product %s: %v", req.ProductID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not create review",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"review_id": reviewID,
	})
}

// HandleListProductReviews returns a product's reviews, newest first.
func (h *ReviewHandler) HandleListProductReviews(c *fiber.Ctx) error {
	productID := c.Params("id")
	reviews, err := h.reviews.ListProductReviews(productID)
	if err != nil {
		log.Printf("Error listing reviews for product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not retrieve reviews",
		})
	}

	items := make([]fiber.Map, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, fiber.Map{
			"id":         review.ID,
			"user_name":  review.UserName,
			"rating":     review.Rating,
			"text":       review.Text,
			"created_at": review.CreatedAt.Format(reviewDateLayout),
		})
	}
	return c.JSON(fiber.Map{
		"reviews": items,
	})
}
