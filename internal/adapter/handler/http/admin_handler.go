package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/middleware/auth"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	pkgErrors "github.com/wekeepgrowing/vipgate/pkg/errors"
	"go.uber.org/zap"
)

// AdminHandler serves offering and grant administration.
type AdminHandler struct {
	catalog *usecase.CatalogService
	logger  *zap.Logger
}

func NewAdminHandler(catalog *usecase.CatalogService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *AdminHandler) ListOfferings(c echo.Context) error {
	offerings, err := h.catalog.ListOfferings(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to list offerings")
	}
	if offerings == nil {
		offerings = []*entity.Offering{}
	}
	return c.JSON(http.StatusOK, echo.Map{"offerings": offerings})
}

// DeleteOffering removes the offering and revokes every grant on it.
func (h *AdminHandler) DeleteOffering(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return pkgErrors.ToHTTPError(pkgErrors.NewAppError(pkgErrors.ErrInvalidArgument, "invalid offering id", err))
	}

	if err := h.catalog.DeleteOffering(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete offering")
	}

	subject := ""
	if admin, err := auth.GetAdminFromContext(c); err == nil {
		subject = admin.Subject
	}
	h.logger.Info("Offering deleted by admin",
		zap.Int64("offering_id", id),
		zap.String("admin", subject))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListBuyerGrants(c echo.Context) error {
	buyerID, err := strconv.ParseInt(c.Param("buyerId"), 10, 64)
	if err != nil {
		return pkgErrors.ToHTTPError(pkgErrors.NewAppError(pkgErrors.ErrInvalidArgument, "invalid buyer id", err))
	}

	access, err := h.catalog.ListAccess(c.Request().Context(), buyerID)
	if err != nil {
		return h.fail(c, err, "Failed to list grants")
	}
	if access == nil {
		access = []*entity.GrantedAccess{}
	}
	return c.JSON(http.StatusOK, echo.Map{"buyer_id": buyerID, "grants": access})
}

func (h *AdminHandler) fail(c echo.Context, err error, msg string) error {
	if errors.Is(err, domainErrors.ErrOfferingNotFound) {
		return pkgErrors.ToHTTPError(pkgErrors.NewAppError(pkgErrors.ErrNotFound, err.Error(), err))
	}
	pkgErrors.LogError(h.logger, err, msg, zap.String("path", c.Request().URL.Path))
	return pkgErrors.ToHTTPError(pkgErrors.Wrap(err, msg))
}
