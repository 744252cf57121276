package commerceController

import (
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	"edumarket/utils"
	commerceValidator "edumarket/validators/commerce"

	"github.com/gofiber/fiber/v2"
)

func AdminListOrders(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAdminOrderList").(*commerceValidator.AdminOrderListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)
	from, to := reqData.Range()

	orders, total, err := services.ListOrders(database.Database.Db, services.OrderFilter{
		UserID: reqData.UserID,
		Status: reqData.Status,
		From:   from,
		To:     to,
	}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch orders!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", fiber.Map{
		"orders":     orders,
		"pagination": page.Meta(total),
	})
}

func AdminGetOrder(c *fiber.Ctx) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order ID!", nil)
	}

	order, err := services.GetOrder(database.Database.Db, 0, orderID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch order!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order fetched successfully!", order)
}

func RefundOrder(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	orderID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order ID!", nil)
	}
	reqData, ok := c.Locals("validatedRefund").(*commerceValidator.RefundRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	order, err := services.RefundOrder(c.UserContext(), database.Database.Db, gateway, orderID, adminId, reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to refund order!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order refunded!", order)
}

// Vouchers

func voucherInput(req *commerceValidator.VoucherRequest) services.VoucherInput {
	return services.VoucherInput{
		Code:           req.Code,
		Description:    req.Description,
		Type:           req.Type,
		Value:          req.Value,
		MaxDiscount:    req.MaxDiscount,
		MinOrderAmount: req.MinOrderAmount,
		UsageLimit:     req.UsageLimit,
		PerUserLimit:   req.PerUserLimit,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		IsActive:       req.IsActive,
	}
}

func ListVouchers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVoucherList").(*commerceValidator.VoucherListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	vouchers, total, err := services.ListVouchers(database.Database.Db, reqData.ActiveFilter(), reqData.Search, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch vouchers!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Vouchers fetched successfully!", fiber.Map{
		"vouchers":   vouchers,
		"pagination": page.Meta(total),
	})
}

func GetVoucher(c *fiber.Ctx) error {
	voucherID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid voucher ID!", nil)
	}

	voucher, err := services.GetVoucher(database.Database.Db, voucherID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch voucher!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Voucher fetched successfully!", voucher)
}

func CreateVoucher(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedVoucher").(*commerceValidator.VoucherRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	voucher, err := services.CreateVoucher(database.Database.Db, adminId, voucherInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create voucher!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Voucher created successfully!", voucher)
}

func UpdateVoucher(c *fiber.Ctx) error {
	voucherID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid voucher ID!", nil)
	}
	reqData, ok := c.Locals("validatedVoucher").(*commerceValidator.VoucherRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	voucher, err := services.UpdateVoucher(database.Database.Db, voucherID, voucherInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update voucher!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Voucher updated successfully!", voucher)
}

func DeleteVoucher(c *fiber.Ctx) error {
	voucherID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid voucher ID!", nil)
	}

	deactivated, err := services.DeleteVoucher(database.Database.Db, voucherID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete voucher!")
	}
	if deactivated {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Voucher is in use and has been deactivated instead!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Voucher deleted successfully!", nil)
}
