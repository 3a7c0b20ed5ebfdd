package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// Le ledger de commandes vit dans ScyllaDB : une table orders par id et une
// table orders_by_user dénormalisée pour la liste d'un client. Les items et
// l'adresse de livraison sont stockés en JSON (colonnes text).

// InsertOrder écrit la commande dans les deux tables.
func InsertOrder(order models.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sérialisation items: %w", err)
	}
	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("sérialisation adresse: %w", err)
	}

	q := database.GetPreparedInsertOrder()
	if q == nil {
		return fmt.Errorf("prepared statements non initialisés")
	}

	err = q.Bind(order.ID, order.UserID, order.Email, string(itemsJSON),
		order.Subtotal, order.Total, order.Status, order.PaymentIntentID,
		string(shippingJSON), order.CreatedAt, order.UpdatedAt).Exec()
	if err != nil {
		return err
	}

	return database.GetPreparedInsertOrderByUser().
		Bind(order.UserID, order.ID, order.Total, order.Status, order.CreatedAt).Exec()
}

// OrderByID lit une commande complète.
func OrderByID(orderID gocql.UUID) (*models.Order, error) {
	q := database.GetPreparedGetOrderByID()
	if q == nil {
		return nil, fmt.Errorf("prepared statements non initialisés")
	}

	var (
		order               models.Order
		itemsJSON, shipJSON string
	)
	err := q.Bind(orderID).Scan(
		&order.ID, &order.UserID, &order.Email, &itemsJSON,
		&order.Subtotal, &order.Total, &order.Status, &order.PaymentIntentID,
		&shipJSON, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return nil, fmt.Errorf("décodage items: %w", err)
	}
	if shipJSON != "" {
		if err := json.Unmarshal([]byte(shipJSON), &order.Shipping); err != nil {
			return nil, fmt.Errorf("décodage adresse: %w", err)
		}
	}

	return &order, nil
}

// OrdersByUser liste les commandes d'un client, les plus récentes d'abord
// (ordre de clustering de orders_by_user).
func OrdersByUser(userID string) ([]models.OrderSummary, error) {
	q := database.GetPreparedGetOrdersByUser()
	if q == nil {
		return nil, fmt.Errorf("prepared statements non initialisés")
	}

	iter := q.Bind(userID).Iter()

	orders := []models.OrderSummary{}
	var o models.OrderSummary
	for iter.Scan(&o.ID, &o.Total, &o.Status, &o.CreatedAt) {
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus change le statut d'une commande dans les deux tables.
func UpdateOrderStatus(order *models.Order, status string) error {
	q := database.GetPreparedUpdateOrderStatus()
	if q == nil {
		return fmt.Errorf("prepared statements non initialisés")
	}

	now := time.Now()
	if err := q.Bind(status, now, order.ID).Exec(); err != nil {
		return err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	err = session.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		status, order.UserID, order.CreatedAt, order.ID).Exec()
	if err != nil {
		return err
	}

	order.Status = status
	order.UpdatedAt = now
	return nil
}
