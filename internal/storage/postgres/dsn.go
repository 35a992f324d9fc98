package postgres

import (
	"fmt"

	"github.com/projectsanctuary/sanctuary/config"
)

// DSN prefers an explicit DB_DSN and otherwise assembles a key/value string.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
