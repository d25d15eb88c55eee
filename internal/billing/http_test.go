package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, customers []gin.H, invoiceCalls *[]map[string]int64) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cliente", func(c *gin.Context) {
		if c.GetHeader("token") != "static-token" {
			c.Status(http.StatusUnauthorized)
			return
		}
		var out []gin.H
		for _, cu := range customers {
			if cu["cpfcnpj"] == c.Query("cpfcnpj") {
				out = append(out, cu)
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": out})
	})
	r.POST("/cobranca/segundaVia", func(c *gin.Context) {
		if c.GetHeader("token") != "static-token" {
			c.Status(http.StatusUnauthorized)
			return
		}
		var body map[string]int64
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		*invoiceCalls = append(*invoiceCalls, body)
		c.JSON(http.StatusOK, gin.H{"msg": "ok", "caminho_pdf": "http://x/a.pdf", "cod_barras": "123"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientLookupScenario(t *testing.T) {
	var calls []map[string]int64
	srv := newProvider(t, []gin.H{{"cod_cliente": 99, "cpfcnpj": "12345678900"}}, &calls)

	c := NewHTTPClient(srv.URL, "static-token", nil)
	res, err := Lookup(context.Background(), c, "12345678900", 2)
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, map[string]int64{"codcobranca": 2, "codcliente": 99}, calls[0])
	assert.Equal(t, "ok", res.Invoice.Message)
	assert.Equal(t, "http://x/a.pdf", res.Invoice.PDFURL)
	assert.Equal(t, "123", res.Invoice.Barcode)
}

func TestHTTPClientEmptyData(t *testing.T) {
	var calls []map[string]int64
	srv := newProvider(t, nil, &calls)

	c := NewHTTPClient(srv.URL, "static-token", nil)
	_, err := Lookup(context.Background(), c, "00000000000", 2)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Empty(t, calls)
}

func TestHTTPClientStatusError(t *testing.T) {
	var calls []map[string]int64
	srv := newProvider(t, nil, &calls)

	c := NewHTTPClient(srv.URL, "wrong", nil)
	_, err := c.FindCustomers(context.Background(), "1")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
}
