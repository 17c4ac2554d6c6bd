package orderstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// PostgresRepository persists the store in Postgres via database/sql.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the tables and the order-number sequence if they do
// not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id VARCHAR(32) PRIMARY KEY,
			salesperson VARCHAR(255) NOT NULL,
			company_name VARCHAR(255) NOT NULL,
			company_number VARCHAR(64) NOT NULL DEFAULT '',
			delivery_location VARCHAR(255) NOT NULL DEFAULT '',
			order_date VARCHAR(32) NOT NULL DEFAULT '',
			delivery_date VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL,
			driver_name VARCHAR(255),
			vehicle_name VARCHAR(255),
			dispatched_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id VARCHAR(32) NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			product_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS salespersons (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			default_units VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			role VARCHAR(32) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq START 10001`,
		`CREATE INDEX IF NOT EXISTS idx_orders_delivery_date ON orders(delivery_date)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) NextOrderNumber(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order number: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, salesperson, company_name, company_number,
			delivery_location, order_date, delivery_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, order.OrderID, order.Salesperson, order.CompanyName, order.CompanyNumber,
		order.DeliveryLocation, order.CurrentDate, order.DeliveryDate, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, order.OrderID, order.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []models.OrderItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.ProductID, item.Name, item.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order := &models.Order{}
	var driver, vehicle sql.NullString
	var dispatchedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, salesperson, company_name, company_number, delivery_location,
			order_date, delivery_date, status, driver_name, vehicle_name, dispatched_at, created_at
		FROM orders WHERE order_id = $1
	`, orderID).Scan(
		&order.OrderID, &order.Salesperson, &order.CompanyName, &order.CompanyNumber,
		&order.DeliveryLocation, &order.CurrentDate, &order.DeliveryDate, &order.Status,
		&driver, &vehicle, &dispatchedAt, &order.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if driver.Valid && dispatchedAt.Valid {
		order.DispatchInfo = &models.DispatchInfo{
			DriverName:   driver.String,
			VehicleName:  vehicle.String,
			DispatchedAt: dispatchedAt.Time,
		}
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, quantity FROM order_items WHERE order_id = $1 ORDER BY id
	`, order.OrderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx, `
		SELECT order_id, salesperson, company_name, company_number, delivery_location,
			order_date, delivery_date, status, driver_name, vehicle_name, dispatched_at, created_at
		FROM orders ORDER BY created_at DESC
	`)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var driver, vehicle sql.NullString
		var dispatchedAt sql.NullTime
		err := rows.Scan(
			&order.OrderID, &order.Salesperson, &order.CompanyName, &order.CompanyNumber,
			&order.DeliveryLocation, &order.CurrentDate, &order.DeliveryDate, &order.Status,
			&driver, &vehicle, &dispatchedAt, &order.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if driver.Valid && dispatchedAt.Valid {
			order.DispatchInfo = &models.DispatchInfo{
				DriverName:   driver.String,
				VehicleName:  vehicle.String,
				DispatchedAt: dispatchedAt.Time,
			}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus applies the transition only while the current status still
// matches: the WHERE clause is the compare-and-swap.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, from, to models.Status, info *models.DispatchInfo) (bool, error) {
	var result sql.Result
	var err error
	if info != nil {
		result, err = r.db.ExecContext(ctx, `
			UPDATE orders SET status = $1, driver_name = $2, vehicle_name = $3, dispatched_at = $4
			WHERE order_id = $5 AND status = $6
		`, to, info.DriverName, info.VehicleName, info.DispatchedAt, orderID, from)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE orders SET status = $1 WHERE order_id = $2 AND status = $3
		`, to, orderID, from)
	}
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish a lost race from a missing order.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *PostgresRepository) ReplaceOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET company_name = $1, delivery_date = $2 WHERE order_id = $3
	`, order.CompanyName, order.DeliveryDate, order.OrderID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.OrderID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, order.OrderID, order.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) OrdersByDeliveryDate(ctx context.Context, date, location string) ([]*models.Order, error) {
	query := `
		SELECT order_id, salesperson, company_name, company_number, delivery_location,
			order_date, delivery_date, status, driver_name, vehicle_name, dispatched_at, created_at
		FROM orders WHERE delivery_date = $1`
	args := []interface{}{date}
	if location != "" {
		query += ` AND delivery_location = $2`
		args = append(args, location)
	}
	query += ` ORDER BY order_id`
	return r.queryOrders(ctx, query, args...)
}

func (r *PostgresRepository) GetSalespersonByName(ctx context.Context, name string) (*models.Salesperson, error) {
	sp := &models.Salesperson{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, created_at FROM salespersons WHERE name = $1
	`, name).Scan(&sp.ID, &sp.Name, &sp.PasswordHash, &sp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (r *PostgresRepository) CreateSalesperson(ctx context.Context, sp *models.Salesperson) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO salespersons (id, name, password_hash, created_at) VALUES ($1, $2, $3, $4)
	`, sp.ID, sp.Name, sp.PasswordHash, sp.CreatedAt)
	return err
}

func (r *PostgresRepository) ListSalespersons(ctx context.Context) ([]*models.Salesperson, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, password_hash, created_at FROM salespersons ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Salesperson
	for rows.Next() {
		sp := &models.Salesperson{}
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.PasswordHash, &sp.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, sp)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteSalesperson(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM salespersons WHERE id = $1`, id)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, default_units, created_at FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.DefaultUnits, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, default_units, created_at) VALUES ($1, $2, $3, $4)
	`, p.ID, p.Name, p.DefaultUnits, p.CreatedAt)
	return err
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, default_units, created_at FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultUnits, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM products WHERE id = $1`, id)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt)
	return err
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, role, password_hash, created_at FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

func deleteByID(ctx context.Context, db *sql.DB, query, id string) error {
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
