package utils

import (
	"strings"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"

	"velora_back_end/internal/models"
)

func TestGenerateOrderConfirmationHTML(t *testing.T) {
	order := models.Order{
		ID:    gocql.TimeUUID(),
		Total: 45.48,
		Items: []models.OrderItem{
			{Name: "Casque Nimbus", Price: 19.99, Quantity: 2},
			{Name: "Câble USB-C", Price: 5.50, Quantity: 1},
		},
		Shipping: models.ShippingAddress{
			Street:     "12 rue des Lilas",
			PostalCode: "1000",
			City:       "Bruxelles",
			Country:    "Belgique",
		},
	}

	html := GenerateOrderConfirmationHTML(order)

	require.Contains(t, html, order.ID.String())
	require.Contains(t, html, "Casque Nimbus")
	require.Contains(t, html, "Câble USB-C")
	require.Contains(t, html, "45.48€")
	require.Contains(t, html, "12 rue des Lilas, 1000 Bruxelles, Belgique")
	// ligne produit : prix unitaire puis total de ligne
	require.Contains(t, html, "19.99€")
	require.Contains(t, html, "39.98€")
}

func TestGenerateSepaQR(t *testing.T) {
	qr, err := GenerateSepaQR("BE12345678901234", "KREDBEBB", "Velora SRL", "FACT-TEST", 99.90)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
	require.Greater(t, len(qr), len("data:image/png;base64,"))
}
