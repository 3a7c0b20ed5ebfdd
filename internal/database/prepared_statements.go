package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes du ledger
	stmtInsertOrder       *gocql.Query
	stmtInsertOrderByUser *gocql.Query
	stmtGetOrderByID      *gocql.Query
	stmtGetOrdersByUser   *gocql.Query
	stmtUpdateOrderStatus *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		stmtInsertOrder = session.Query(`INSERT INTO orders (order_id, user_id, email, items, subtotal, total, status, payment_intent_id, shipping, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		stmtInsertOrderByUser = session.Query(`INSERT INTO orders_by_user (user_id, order_id, total, status, created_at)
			VALUES (?, ?, ?, ?, ?)`)

		stmtGetOrderByID = session.Query(`SELECT order_id, user_id, email, items, subtotal, total, status, payment_intent_id, shipping, created_at, updated_at
			FROM orders WHERE order_id = ?`)

		stmtGetOrdersByUser = session.Query(`SELECT order_id, total, status, created_at FROM orders_by_user WHERE user_id = ?`)

		stmtUpdateOrderStatus = session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`)

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedInsertOrder() *gocql.Query {
	return stmtInsertOrder
}

func GetPreparedInsertOrderByUser() *gocql.Query {
	return stmtInsertOrderByUser
}

func GetPreparedGetOrderByID() *gocql.Query {
	return stmtGetOrderByID
}

func GetPreparedGetOrdersByUser() *gocql.Query {
	return stmtGetOrdersByUser
}

func GetPreparedUpdateOrderStatus() *gocql.Query {
	return stmtUpdateOrderStatus
}
