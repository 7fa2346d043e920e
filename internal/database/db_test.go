package database

import (
	"testing"

	"ytAgent/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	c := config.Database{Host: "db", Port: "5432", Name: "ytagent", User: "yt", Password: "secret"}

	assert.Equal(t, "host=db port=5432 user=yt password=secret dbname=ytagent sslmode=disable TimeZone=UTC", DSN(c))
	assert.Equal(t, "postgres://yt:secret@db:5432/ytagent?sslmode=disable", URL(c))
}
