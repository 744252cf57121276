package commerceController

import (
	"log"
	"net/url"
	"time"

	"edumarket/config"
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/services"
	"edumarket/utils"
	commerceValidator "edumarket/validators/commerce"

	"github.com/gofiber/fiber/v2"
)

// webhookTolerance bounds the age of a signed webhook timestamp.
const webhookTolerance = 5 * time.Minute

var gateway services.PaymentGateway

// SetGateway installs the payment gateway used for checkout, confirmation and refunds.
func SetGateway(gw services.PaymentGateway) {
	gateway = gw
}

func checkoutURLs(orderCode string) (success, cancel string) {
	base := "http://localhost:5500"
	if config.AppConfig != nil && config.AppConfig.FrontendURL != "" {
		base = config.AppConfig.FrontendURL
	}
	// the gateway substitutes the session id placeholder on redirect
	success = base + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	cancel = base + "/payment/cancel?order=" + url.QueryEscape(orderCode)
	return success, cancel
}

// Checkout turns the requested courses (or the whole cart) into an order.
// Free orders settle at once, others get a hosted checkout session.
func Checkout(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := c.Locals("validatedCheckout").(*commerceValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courseIDs := reqData.CourseIDs
	if len(courseIDs) == 0 {
		ids, err := services.CartCourseIDs(db, userId)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to load cart!")
		}
		if len(ids) == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Your cart is empty!", nil)
		}
		courseIDs = ids
	}

	order, err := services.CreateOrder(db, userId, courseIDs, reqData.VoucherCode)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create order!")
	}

	if !order.Total.IsPositive() {
		result, err := services.ProcessPaymentSuccess(db, order.ID, services.PaymentInfo{Gateway: commerce.GatewayFree})
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to complete order!")
		}
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Order completed successfully!", fiber.Map{
			"order":           result.Order,
			"new_enrollments": result.NewEnrollments,
		})
	}

	if gateway == nil {
		_, _ = services.ProcessPaymentFailure(db, order.ID, "payment gateway unavailable")
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Online payment is not available right now!", nil)
	}

	var user models.User
	if err := db.Select("id", "email").First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	successURL, cancelURL := checkoutURLs(order.OrderCode)
	if err := services.StartCheckout(c.UserContext(), db, gateway, order, user.Email, successURL, cancelURL); err != nil {
		if _, ferr := services.ProcessPaymentFailure(db, order.ID, "checkout session could not be created"); ferr != nil {
			log.Printf("[PAYMENT] Failed to mark order %s failed: %v", order.OrderCode, ferr)
		}
		return middleware.ErrorResponse(c, err, "Failed to start payment!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Order created, continue to payment.", fiber.Map{
		"order":        order,
		"checkout_url": order.CheckoutURL,
	})
}

func ListMyOrders(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedOrderList").(*commerceValidator.OrderListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	orders, total, err := services.ListOrders(database.Database.Db, services.OrderFilter{UserID: userId, Status: reqData.Status}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch orders!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", fiber.Map{
		"orders":     orders,
		"pagination": page.Meta(total),
	})
}

func GetMyOrder(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	orderID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order ID!", nil)
	}

	order, err := services.GetOrder(database.Database.Db, userId, orderID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch order!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order fetched successfully!", order)
}

func CancelOrder(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	orderID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order ID!", nil)
	}

	order, err := services.CancelOrder(database.Database.Db, userId, orderID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to cancel order!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order cancelled!", order)
}

// ConfirmPayment settles the order behind a checkout session after the buyer is redirected back.
func ConfirmPayment(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedConfirm").(*commerceValidator.ConfirmQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if gateway == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Online payment is not available right now!", nil)
	}

	result, err := services.ConfirmCheckoutSession(c.UserContext(), database.Database.Db, gateway, reqData.SessionID)
	if result != nil && result.Order != nil && result.Order.UserID != userId {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to confirm payment!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment confirmed!", fiber.Map{
		"order":           result.Order,
		"already_paid":    result.AlreadyPaid,
		"new_enrollments": result.NewEnrollments,
	})
}

// StripeWebhook verifies and applies a gateway event. Events for unknown orders are acknowledged so they are not retried.
func StripeWebhook(c *fiber.Ctx) error {
	secret := ""
	if config.AppConfig != nil {
		secret = config.AppConfig.StripeWebhookSecret
	}

	event, err := utils.ConstructStripeEvent(c.Body(), c.Get("Stripe-Signature"), secret, webhookTolerance, time.Now())
	if err != nil {
		log.Printf("[PAYMENT] Rejected webhook: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid signature!", nil)
	}

	if err := services.HandleStripeEvent(database.Database.Db, event); err != nil {
		switch services.HTTPStatus(err) {
		case fiber.StatusNotFound, fiber.StatusBadRequest:
			log.Printf("[PAYMENT] Webhook %s (%s) not applied: %v", event.ID, event.Type, err)
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Event acknowledged.", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to process event!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed.", nil)
}
