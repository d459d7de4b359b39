package database

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLServerURL(t *testing.T) {
	raw := SQLServerURL("warehouse.example.com:1433", "Reporting", "sync", "p@ss word")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "warehouse.example.com:1433", u.Host)
	assert.Equal(t, "sync", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "Reporting", u.Query().Get("database"))
	assert.Equal(t, "true", u.Query().Get("encrypt"))
}

func TestRedactedHidesPassword(t *testing.T) {
	raw := SQLServerURL("db:1433", "Reporting", "sync", "secret")
	red := Redacted(raw)
	assert.NotContains(t, red, "secret")
	assert.Contains(t, red, "db:1433")
}

func TestConnectSQLRejectsBadURL(t *testing.T) {
	_, err := ConnectSQL(context.Background(), "not a url")
	assert.Error(t, err)
}
