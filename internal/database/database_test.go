package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskup/internal/config"
	"taskup/internal/database"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "taskup",
		DBPassword: "secret",
		DBName:     "taskup_db",
		DBSSLMode:  "require",
	}

	assert.Equal(t, "host=db port=5432 user=taskup password=secret dbname=taskup_db sslmode=require", database.DSN(cfg))
}
