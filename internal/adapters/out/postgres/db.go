package postgres

import (
	"fmt"

	"fleet/internal/adapters/out/postgres/assignmentrepo"
	"fleet/internal/adapters/out/postgres/loadrepo"
	"fleet/internal/adapters/out/postgres/notificationrepo"
	"fleet/internal/adapters/out/postgres/resourcerepo"
	"fleet/internal/core/domain/model/assignment"

	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with unique violations translated to gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgresdriver.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// Migrate creates or updates every table the repositories and read models
// use.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&loadrepo.LoadDTO{},
		&loadrepo.VehicleDTO{},
		&loadrepo.HistoryDTO{},
		&assignmentrepo.AssignmentDTO{},
		&assignmentrepo.VehicleDTO{},
		&resourcerepo.ResourceDTO{},
		&notificationrepo.NotificationDTO{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	onePending := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON assignments (load_id) WHERE state = %d",
		assignmentrepo.OnePendingPerLoadIndex, int(assignment.Pending),
	)
	if err := db.Exec(onePending).Error; err != nil {
		return fmt.Errorf("create %s: %w", assignmentrepo.OnePendingPerLoadIndex, err)
	}

	return nil
}

// Tables lists every table Migrate manages, children first.
func Tables() []string {
	return []string{
		"load_vehicles", "load_stage_history", "assignment_vehicles",
		"notifications", "assignments", "resources", "loads",
	}
}
