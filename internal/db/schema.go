package db

import "database/sql"

// EnsureSchema creates the tables the service needs. Statements are
// idempotent so startup is safe against an already-provisioned database.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(36) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	is_admin TINYINT(1) NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS routes (
	id VARCHAR(36) PRIMARY KEY,
	origin VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	departure_label VARCHAR(50) NOT NULL,
	price_cents BIGINT NOT NULL,
	total_seats INT NOT NULL,
	occupied_seats JSON NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_endpoints (origin, destination)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS payment_methods (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	kind VARCHAR(10) NOT NULL,
	card_last_four VARCHAR(4) NOT NULL DEFAULT '',
	card_holder VARCHAR(100) NOT NULL DEFAULT '',
	card_brand VARCHAR(20) NOT NULL DEFAULT '',
	card_expiry VARCHAR(5) NOT NULL DEFAULT '',
	phone_number VARCHAR(15) NOT NULL DEFAULT '',
	account_name VARCHAR(100) NOT NULL DEFAULT '',
	is_default TINYINT(1) NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS transactions (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	user_name VARCHAR(100) NOT NULL,
	ticket_id VARCHAR(36) NOT NULL DEFAULT '',
	method_id VARCHAR(36) NOT NULL,
	method_kind VARCHAR(10) NOT NULL,
	method_display VARCHAR(100) NOT NULL,
	amount_cents BIGINT NOT NULL,
	status VARCHAR(20) NOT NULL,
	origin VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	description VARCHAR(255) NOT NULL DEFAULT '',
	error_message VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_user (user_id),
	KEY idx_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS tickets (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	user_name VARCHAR(100) NOT NULL,
	route_id VARCHAR(36) NOT NULL,
	passenger_name VARCHAR(100) NOT NULL,
	passenger_dni VARCHAR(8) NOT NULL,
	seat_number INT NOT NULL,
	origin VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	departure_label VARCHAR(50) NOT NULL,
	price_cents BIGINT NOT NULL,
	status VARCHAR(10) NOT NULL DEFAULT 'ACTIVE',
	purchased_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_user (user_id),
	KEY idx_route (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
