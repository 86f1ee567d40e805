package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemRequest struct {
	ProductID string   `json:"product_id" validate:"required,max=64"`
	Name      string   `json:"name" validate:"required"`
	Price     float64  `json:"price" validate:"gte=0"`
	Currency  string   `json:"currency" validate:"omitempty,len=3,uppercase"`
	Image     string   `json:"image" validate:"imageref"`
	Tags      []string `json:"tags" validate:"max=2"`
	Internal  string   `json:"-" validate:"omitempty,oneof=a b"`
}

func validRequest() addItemRequest {
	return addItemRequest{ProductID: "1", Name: "Gold Ring", Price: 150, Currency: "NGN", Image: "/data/images/j1.jpg"}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validRequest()))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	req := validRequest()
	req.ProductID = ""

	fields := fieldsOf(t, Validate(req))
	assert.Equal(t, "is required", fields["product_id"])
	assert.NotContains(t, fields, "ProductID")
}

func TestValidate_MultipleErrors(t *testing.T) {
	fields := fieldsOf(t, Validate(addItemRequest{Price: -1}))
	assert.Contains(t, fields, "product_id")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields["price"], "greater than or equal to 0")
}

func TestValidate_Currency(t *testing.T) {
	req := validRequest()
	req.Currency = "ng"
	fields := fieldsOf(t, Validate(req))
	assert.Contains(t, fields["currency"], "exactly 3")

	req.Currency = "ngn"
	fields = fieldsOf(t, Validate(req))
	assert.Equal(t, "must be upper-case", fields["currency"])
}

func TestValidate_SliceMax(t *testing.T) {
	req := validRequest()
	req.Tags = []string{"a", "b", "c"}
	fields := fieldsOf(t, Validate(req))
	assert.Equal(t, "must contain at most 2 items", fields["tags"])
}

func TestValidate_ImageRef(t *testing.T) {
	valid := []string{
		"",
		"/data/images/gold-ring.jpg",
		"https://cdn.example.com/a.png",
		"HTTP://example.com/a.png",
		"data:image/svg+xml;utf8,<svg/>",
	}
	for _, v := range valid {
		req := validRequest()
		req.Image = v
		assert.NoError(t, Validate(req), v)
	}

	for _, v := range []string{"images/a.jpg", "ftp://x/a.jpg", "javascript:alert(1)"} {
		req := validRequest()
		req.Image = v
		fields := fieldsOf(t, Validate(req))
		assert.Contains(t, fields["image"], "site path", v)
	}
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(addItemRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'product_id' is required")
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("gold", "max=10"))

	err := Var(strings.Repeat("x", 11), "max=10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 10 characters")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"product_id":"3","name":"Silk Scarf","price":45,"currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var dst addItemRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "3", dst.ProductID)
	assert.Equal(t, "Silk Scarf", dst.Name)
	assert.Equal(t, 45.0, dst.Price)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var dst addItemRequest
	err := DecodeAndValidate(req, &dst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"","name":"x"}`))

	var dst addItemRequest
	err := DecodeAndValidate(req, &dst)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
