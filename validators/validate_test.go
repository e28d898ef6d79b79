package validators

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"capitalrise/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name   string          `json:"name" validate:"required,min=3"`
	Mobile string          `json:"mobile" validate:"required,mobile"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Pan    string          `json:"pan" validate:"omitempty,pan"`
	UPI    string          `json:"upi" validate:"omitempty,upi"`
	Method string          `json:"method" validate:"omitempty,oneof=UPI Bank"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	errs := Struct(&sampleRequest{
		Name:   "ab",
		Mobile: "5123456789",
		Pan:    "abcd",
		UPI:    "not-an-upi",
		Method: "Cash",
	})
	assert.Equal(t, map[string]string{
		"name":   "Must be at least 3 characters long!",
		"mobile": "Invalid mobile number!",
		"amount": "Must be greater than 0!",
		"pan":    "Invalid PAN number format!",
		"upi":    "Invalid UPI ID!",
		"method": "Must be one of: UPI, Bank!",
	}, errs)
}

func TestStructAcceptsValidRequest(t *testing.T) {
	errs := Struct(&sampleRequest{
		Name:   "Asha",
		Mobile: "9876543210",
		Amount: decimal.RequireFromString("10.50"),
		Pan:    "abcde1234f",
		UPI:    "asha.k@okaxis",
		Method: "UPI",
	})
	assert.Nil(t, errs)
}

func TestBodyRejectsMalformedJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		if ok, err := Body(c, new(sampleRequest)); !ok {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","mobile":"9876543210","amount":"25"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestPagination(t *testing.T) {
	app := fiber.New()
	app.Get("/", Pagination(), func(c *fiber.Ctx) error {
		return c.JSON(GetPage(c))
	})

	get := func(target string) (int, ledger.Page) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		var p ledger.Page
		if resp.StatusCode == fiber.StatusOK {
			require.NoError(t, json.Unmarshal(body, &p))
		}
		return resp.StatusCode, p
	}

	status, page := get("/?page=2&limit=5")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, ledger.Page{Page: 2, Limit: 5}, page)

	status, page = get("/")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, ledger.Page{Page: 1, Limit: 20}, page)

	status, _ = get("/?limit=500")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
