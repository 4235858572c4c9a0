package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// PublicHandler serves the unauthenticated checkout flow: guardians
// open an invoice by its public UUID and pay online, and the gateway
// posts settlement notifications back here.
type PublicHandler struct {
	invoices *services.InvoiceService
	payments *services.PaymentService
}

func NewPublicHandler(invoices *services.InvoiceService, payments *services.PaymentService) *PublicHandler {
	return &PublicHandler{invoices: invoices, payments: payments}
}

// ShowInvoice returns the public snapshot of an invoice for the
// checkout page
func (h *PublicHandler) ShowInvoice(c echo.Context) error {
	publicID := c.Param("uuid")
	if publicID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice reference")
	}

	invoice, err := h.invoices.GetByUUID(c.Request().Context(), publicID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// InitiatePayment starts or resumes a gateway checkout for the
// invoice's outstanding balance
func (h *PublicHandler) InitiatePayment(c echo.Context) error {
	publicID := c.Param("uuid")
	if publicID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice reference")
	}

	invoice, err := h.invoices.GetByUUID(c.Request().Context(), publicID)
	if err != nil {
		return err
	}

	forceNew := c.QueryParam("force_new") == "true"
	callbackURL := c.Scheme() + "://" + c.Request().Host + "/p/invoices/" + publicID

	result, err := h.payments.InitiateGatewayPayment(c.Request().Context(), invoice, forceNew, callbackURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GatewayNotification receives midtrans webhooks. The response is 200
// for anything we logged, so the gateway stops redelivering; processing
// errors for known orders surface as 500 and get retried.
func (h *PublicHandler) GatewayNotification(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}

	if err := h.payments.HandleGatewayNotification(c.Request().Context(), payload); err != nil {
		log.Printf("Gateway notification failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "notification processing failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
