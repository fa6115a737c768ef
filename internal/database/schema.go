package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// show_seats is the occupancy set of every show. Its primary key makes a
// multi-row insert claim all requested seats or none. booking_id is NULL
// for seats locked by an admin.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		city        VARCHAR(255) NOT NULL,
		address     VARCHAR(512) NOT NULL,
		seat_rows   INT          NOT NULL,
		seat_cols   INT          NOT NULL,
		admin_email VARCHAR(255) NOT NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_venues_admin (admin_email),
		CONSTRAINT chk_venue_grid CHECK (seat_rows > 0 AND seat_cols > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS events (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		poster         MEDIUMTEXT   NOT NULL,
		duration       VARCHAR(64)  NOT NULL DEFAULT '',
		genre          VARCHAR(128) NOT NULL DEFAULT '',
		languages      JSON         NULL,
		cast_members   JSON         NULL,
		admin_owner    VARCHAR(255) NOT NULL,
		admin_email    VARCHAR(255) NOT NULL,
		average_rating DECIMAL(3,1) NOT NULL DEFAULT 0,
		num_reviews    INT          NOT NULL DEFAULT 0,
		created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_events_admin (admin_email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS event_venues (
		event_id CHAR(36) NOT NULL,
		venue_id CHAR(36) NOT NULL,
		PRIMARY KEY (event_id, venue_id),
		CONSTRAINT fk_event_venues_event FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE,
		CONSTRAINT fk_event_venues_venue FOREIGN KEY (venue_id) REFERENCES venues (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id           CHAR(36)      NOT NULL PRIMARY KEY,
		event_id     CHAR(36)      NOT NULL,
		venue_id     CHAR(36)      NOT NULL,
		show_date    VARCHAR(10)   NOT NULL,
		show_time    VARCHAR(8)    NOT NULL,
		price_gold   DECIMAL(10,2) NOT NULL,
		price_silver DECIMAL(10,2) NOT NULL,
		price_bronze DECIMAL(10,2) NOT NULL,
		admin_email  VARCHAR(255)  NOT NULL,
		created_at   DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_shows_event (event_id),
		CONSTRAINT fk_shows_event FOREIGN KEY (event_id) REFERENCES events (id),
		CONSTRAINT fk_shows_venue FOREIGN KEY (venue_id) REFERENCES venues (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           CHAR(36)      NOT NULL PRIMARY KEY,
		show_id      CHAR(36)      NOT NULL,
		user_email   VARCHAR(255)  NOT NULL,
		base_price   DECIMAL(10,2) NOT NULL DEFAULT 0,
		service_fee  DECIMAL(10,2) NOT NULL DEFAULT 0,
		total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
		booking_date DATETIME      NOT NULL,
		created_at   DATETIME(6)   NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_bookings_user (user_email, created_at),
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS show_seats (
		show_id    CHAR(36)   NOT NULL,
		seat_id    VARCHAR(8) NOT NULL,
		booking_id CHAR(36)   NULL,
		position   INT        NOT NULL DEFAULT 0,
		created_at DATETIME   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (show_id, seat_id),
		KEY idx_show_seats_booking (booking_id, position),
		CONSTRAINT fk_show_seats_show FOREIGN KEY (show_id) REFERENCES shows (id),
		CONSTRAINT fk_show_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		event_id   CHAR(36)     NOT NULL,
		user_email VARCHAR(255) NOT NULL,
		user_name  VARCHAR(255) NOT NULL,
		rating     TINYINT      NOT NULL,
		comment    TEXT         NOT NULL,
		status     ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
		created_at DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_reviews_event_user (event_id, user_email),
		KEY idx_reviews_event_status (event_id, status),
		CONSTRAINT chk_review_rating CHECK (rating BETWEEN 1 AND 5),
		CONSTRAINT fk_reviews_event FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
