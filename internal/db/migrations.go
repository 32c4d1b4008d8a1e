package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		route_id UUID REFERENCES routes(id) ON DELETE SET NULL,
		direction VARCHAR(16) NOT NULL CHECK (direction IN ('arrival', 'departure')),
		trip_date DATE NOT NULL,
		meeting_time VARCHAR(8),
		departure_time VARCHAR(8),
		start_location VARCHAR(255),
		end_location VARCHAR(255),
		start_lat DOUBLE PRECISION,
		start_lng DOUBLE PRECISION,
		end_lat DOUBLE PRECISION,
		end_lng DOUBLE PRECISION,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_upcoming ON trips (direction, trip_date, departure_time) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS stop_points (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		trip_id UUID REFERENCES trips(id) ON DELETE CASCADE,
		route_id UUID REFERENCES routes(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		kind VARCHAR(16) CHECK (kind IS NULL OR kind IN ('', 'pickup', 'dropoff', 'both'))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_stop_points_trip_id ON stop_points (trip_id, order_index);`,
	`CREATE INDEX IF NOT EXISTS idx_stop_points_route_id ON stop_points (route_id, order_index) WHERE trip_id IS NULL;`,
	`CREATE TABLE IF NOT EXISTS visit_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		visitor_name VARCHAR(255) NOT NULL,
		visit_type VARCHAR(32) NOT NULL,
		companions_count INTEGER NOT NULL DEFAULT 0,
		phone VARCHAR(32),
		purpose TEXT,
		status VARCHAR(32) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'under_review', 'approved', 'rejected', 'completed')),
		rejection_reason TEXT,
		is_draft BOOLEAN NOT NULL DEFAULT FALSE,
		deposit_paid BOOLEAN NOT NULL DEFAULT FALSE,
		deposit_amount NUMERIC(12, 2),
		payment_verified BOOLEAN NOT NULL DEFAULT FALSE,
		remaining_amount NUMERIC(12, 2),
		total_amount NUMERIC(12, 2),
		assigned_to UUID,
		trip_id UUID REFERENCES trips(id) ON DELETE SET NULL,
		arrival_trip_id UUID REFERENCES trips(id) ON DELETE SET NULL,
		departure_trip_id UUID REFERENCES trips(id) ON DELETE SET NULL,
		arrival_date DATE,
		departure_date DATE,
		trip_status VARCHAR(64),
		selected_dropoff_stop_id UUID REFERENCES stop_points(id) ON DELETE SET NULL,
		selected_pickup_stop_id UUID REFERENCES stop_points(id) ON DELETE SET NULL,
		booking_confirmed_at TIMESTAMPTZ,
		admin_notes TEXT,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_requests_user_id ON visit_requests (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_requests_status ON visit_requests (status) WHERE NOT is_draft;`,
	`CREATE INDEX IF NOT EXISTS idx_visit_requests_assigned_to ON visit_requests (assigned_to);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_requests_created_at ON visit_requests (created_at);`,
	`CREATE TABLE IF NOT EXISTS request_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		request_id UUID NOT NULL REFERENCES visit_requests(id),
		kind VARCHAR(32) NOT NULL
			CHECK (kind IN ('admin_response', 'admin_booking', 'booking_modification', 'admin_created', 'payment_image', 'applicant_note')),
		body TEXT,
		payload TEXT,
		actor_id UUID,
		seq BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`ALTER TABLE request_events ADD COLUMN IF NOT EXISTS seq BIGINT NOT NULL DEFAULT 0;`,
	`DROP INDEX IF EXISTS idx_request_events_lookup;`,
	`CREATE INDEX IF NOT EXISTS idx_request_events_order ON request_events (request_id, kind, seq DESC);`,
	`CREATE OR REPLACE FUNCTION forbid_request_event_change()
	RETURNS TRIGGER AS $$
	BEGIN
		RAISE EXCEPTION 'request_events rows are append-only';
	END;
	$$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS trg_request_events_append_only ON request_events;`,
	`CREATE TRIGGER trg_request_events_append_only
		BEFORE UPDATE OR DELETE ON request_events
		FOR EACH ROW
		EXECUTE PROCEDURE forbid_request_event_change();`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID,
		audience VARCHAR(32),
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		kind VARCHAR(32) NOT NULL,
		request_id UUID REFERENCES visit_requests(id) ON DELETE CASCADE,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_audience ON notifications (audience, created_at DESC) WHERE user_id IS NULL;`,
	// updated_at is set by the repository together with the version bump.
	`DROP TRIGGER IF EXISTS trg_visit_requests_updated_at ON visit_requests;`,
	`DROP FUNCTION IF EXISTS set_row_updated_at();`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
