package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-admin/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "course",
		Password: "p@ss word",
		Name:     "courses",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://course:p%40ss%20word@db:5432/courses?sslmode=disable", dsn)
}
