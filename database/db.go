package database

import (
	"fmt"
	"os"

	"waste-logistics/logger"
	"waste-logistics/models/client"
	"waste-logistics/models/driver"
	"waste-logistics/models/intake"
	"waste-logistics/models/log"
	"waste-logistics/models/order"
	"waste-logistics/models/route"
	"waste-logistics/models/site"
	"waste-logistics/models/vehicle"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	// Get database configuration from environment variables
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE") // Optional: "disable", "require", etc.

	// Set default sslmode if not provided
	if sslmode == "" {
		sslmode = "disable"
	}

	// Build PostgreSQL DSN string
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	// Handle foreign key constraints after migrations
	if err := createForeignKeyConstraints(); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return nil, err
	}
	logger.Success("All foreign key constraints created successfully")

	// Create indexes for better performance
	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&site.Site{},
		&client.Client{},
		&vehicle.Vehicle{},
		&driver.Driver{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Orders and their status history
	stage2Models := []interface{}{
		&order.Order{},
		&order.OrderStatusEvent{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Routes, stops and their status history
	stage3Models := []interface{}{
		&route.Route{},
		&route.Stop{},
		&route.RouteStatusEvent{},
	}

	for _, model := range stage3Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 4: Remaining models
	remainingModels := []interface{}{
		&intake.IntakeParseRequest{},
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// Order indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_site_status ON orders(site_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create order site_id/status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_route_id ON orders(route_id)").Error; err != nil {
		return fmt.Errorf("failed to create order route_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_sla_deadline ON orders(sla_deadline)").Error; err != nil {
		return fmt.Errorf("failed to create order sla_deadline index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create order created_at index: %w", err)
	}

	// Route indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_routes_site_status ON routes(site_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create route site_id/status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_routes_scheduled_date ON routes(scheduled_date)").Error; err != nil {
		return fmt.Errorf("failed to create route scheduled_date index: %w", err)
	}

	// Stop indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_stops_order_id ON stops(order_id)").Error; err != nil {
		return fmt.Errorf("failed to create stop order_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_stops_status ON stops(status)").Error; err != nil {
		return fmt.Errorf("failed to create stop status index: %w", err)
	}

	// Status event indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_order_status_events_order_id ON order_status_events(order_id)").Error; err != nil {
		return fmt.Errorf("failed to create order_status_events order_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_route_status_events_route_id ON route_status_events(route_id)").Error; err != nil {
		return fmt.Errorf("failed to create route_status_events route_id index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_method ON logs(method)").Error; err != nil {
		return fmt.Errorf("failed to create log method index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration
func createForeignKeyConstraints() error {
	// Define constraints with their names for checking existence
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_orders_site",
			sql: `ALTER TABLE orders ADD CONSTRAINT fk_orders_site
				  FOREIGN KEY (site_id) REFERENCES sites(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_orders_client",
			sql: `ALTER TABLE orders ADD CONSTRAINT fk_orders_client
				  FOREIGN KEY (client_id) REFERENCES clients(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_routes_site",
			sql: `ALTER TABLE routes ADD CONSTRAINT fk_routes_site
				  FOREIGN KEY (site_id) REFERENCES sites(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_routes_vehicle",
			sql: `ALTER TABLE routes ADD CONSTRAINT fk_routes_vehicle
				  FOREIGN KEY (vehicle_id) REFERENCES vehicles(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_routes_driver",
			sql: `ALTER TABLE routes ADD CONSTRAINT fk_routes_driver
				  FOREIGN KEY (driver_id) REFERENCES drivers(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_stops_route",
			sql: `ALTER TABLE stops ADD CONSTRAINT fk_stops_route
				  FOREIGN KEY (route_id) REFERENCES routes(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
		{
			name: "fk_stops_order",
			sql: `ALTER TABLE stops ADD CONSTRAINT fk_stops_order
				  FOREIGN KEY (order_id) REFERENCES orders(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
	}

	for _, constraint := range constraints {
		// Check if constraint already exists
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := DB.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := DB.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
