package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/holox/posinput/internal/usb"
)

// SQLiteStore persists device sightings and permission grants to SQLite.
//
// Sightings form an append-only audit trail of attach/detach activity for
// support diagnostics ("which scanner was plugged in when the till
// stopped scanning?"). Permission grants are upserts keyed on
// (vendor_id, product_id) and are what survives a daemon restart.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on an open database handle.
// The schema comes from the embedded migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordSighting appends one attach/detach sighting.
func (s *SQLiteStore) RecordSighting(ctx context.Context, desc usb.Descriptor, event string, cls usb.ClassificationResult) error {
	id := "sgt-" + uuid.NewString()[:8]

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO device_sightings
		   (id, device_name, vendor_id, product_id, product_name, manufacturer_name, device_type, confidence, event, seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, desc.DeviceName, desc.VendorID, desc.ProductID,
		nullableString(desc.ProductName), nullableString(desc.ManufacturerName),
		string(cls.Type), cls.Confidence, event,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting device sighting: %w", err)
	}
	return nil
}

// SavePermission upserts the remembered permission decision for a
// (vendor, product) pair.
func (s *SQLiteStore) SavePermission(ctx context.Context, vendorID, productID uint16, granted bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO permission_grants (vendor_id, product_id, granted, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(vendor_id, product_id) DO UPDATE SET
		   granted = excluded.granted,
		   updated_at = excluded.updated_at`,
		vendorID, productID, granted,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving permission grant: %w", err)
	}
	return nil
}

// GrantedPermissions returns all remembered permission decisions.
func (s *SQLiteStore) GrantedPermissions(ctx context.Context) ([]PermissionGrant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor_id, product_id, granted FROM permission_grants`)
	if err != nil {
		return nil, fmt.Errorf("querying permission grants: %w", err)
	}
	defer rows.Close()

	var grants []PermissionGrant
	for rows.Next() {
		var g PermissionGrant
		if err := rows.Scan(&g.VendorID, &g.ProductID, &g.Granted); err != nil {
			return nil, fmt.Errorf("scanning permission grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permission grants: %w", err)
	}

	return grants, nil
}

// Sighting is one row of the attach/detach audit trail.
type Sighting struct {
	ID               string    `json:"id"`
	DeviceName       string    `json:"device_name"`
	VendorID         uint16    `json:"vendor_id"`
	ProductID        uint16    `json:"product_id"`
	ProductName      string    `json:"product_name,omitempty"`
	ManufacturerName string    `json:"manufacturer_name,omitempty"`
	DeviceType       string    `json:"device_type"`
	Confidence       float64   `json:"confidence"`
	Event            string    `json:"event"`
	SeenAt           time.Time `json:"seen_at"`
}

// RecentSightings returns the most recent sightings, newest first.
// Limit is clamped to [1, 200].
func (s *SQLiteStore) RecentSightings(ctx context.Context, limit int) ([]Sighting, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, device_name, vendor_id, product_id, product_name, manufacturer_name, device_type, confidence, event, seen_at
		 FROM device_sightings
		 ORDER BY seen_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying device sightings: %w", err)
	}
	defer rows.Close()

	var sightings []Sighting
	for rows.Next() {
		var sg Sighting
		var productName, manufacturer sql.NullString
		var seenAt string

		if err := rows.Scan(&sg.ID, &sg.DeviceName, &sg.VendorID, &sg.ProductID,
			&productName, &manufacturer, &sg.DeviceType, &sg.Confidence, &sg.Event, &seenAt); err != nil {
			return nil, fmt.Errorf("scanning device sighting: %w", err)
		}
		if productName.Valid {
			sg.ProductName = productName.String
		}
		if manufacturer.Valid {
			sg.ManufacturerName = manufacturer.String
		}

		t, err := time.Parse(time.RFC3339, seenAt)
		if err != nil {
			return nil, fmt.Errorf("parsing sighting timestamp %q: %w", seenAt, err)
		}
		sg.SeenAt = t

		sightings = append(sightings, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device sightings: %w", err)
	}

	if sightings == nil {
		sightings = []Sighting{}
	}
	return sightings, nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
