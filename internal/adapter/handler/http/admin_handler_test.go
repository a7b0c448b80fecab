package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	"github.com/wekeepgrowing/vipgate/pkg/logger"
	"go.uber.org/zap"
)

func newAdminServer(store *stubStore) *echo.Echo {
	e := echo.New()
	logger.WithEchoLogger(e, zap.NewNop())
	h := NewAdminHandler(usecase.NewCatalogService(store, zap.NewNop()), zap.NewNop())
	e.GET("/offerings", h.ListOfferings)
	e.DELETE("/offerings/:id", h.DeleteOffering)
	e.GET("/buyers/:buyerId/grants", h.ListBuyerGrants)
	return e
}

func do(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestAdminHandler_ListOfferings(t *testing.T) {
	store := newStubStore()
	e := newAdminServer(store)

	rec := do(e, http.MethodGet, "/offerings")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"offerings":[]}`, rec.Body.String())

	store.offerings[1] = &entity.Offering{ID: 1, Name: "Gold", PriceRef: "price_1", Recurring: true}
	rec = do(e, http.MethodGet, "/offerings")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price_ref":"price_1"`)
}

func TestAdminHandler_DeleteOffering(t *testing.T) {
	store := newStubStore()
	store.offerings[1] = &entity.Offering{ID: 1, Name: "Gold"}
	e := newAdminServer(store)

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/offerings/1").Code)
	assert.Empty(t, store.offerings)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/offerings/1").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodDelete, "/offerings/gold").Code)
}

func TestAdminHandler_ListBuyerGrants(t *testing.T) {
	store := newStubStore()
	store.offerings[1] = &entity.Offering{ID: 1, Name: "Gold", ResourceLink: "https://t.me/gold"}
	store.grants[[2]int64{42, 1}] = true
	e := newAdminServer(store)

	rec := do(e, http.MethodGet, "/buyers/42/grants")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"resource_link":"https://t.me/gold"`)

	rec = do(e, http.MethodGet, "/buyers/7/grants")
	assert.JSONEq(t, `{"buyer_id":7,"grants":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/buyers/x/grants").Code)
}
