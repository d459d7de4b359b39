package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/xo/dburl"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SQLServerURL builds a sqlserver:// connection URL that always requests an
// encrypted transport.
func SQLServerURL(host, database, user, password string) string {
	q := url.Values{}
	q.Set("database", database)
	q.Set("encrypt", "true")
	q.Set("TrustServerCertificate", "true")
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(user, password),
		Host:     host,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Redacted returns the connection URL with its password masked, for logging.
func Redacted(connURL string) string {
	u, err := dburl.Parse(connURL)
	if err != nil {
		return "<unparseable connection url>"
	}
	return u.Redacted()
}

// ConnectSQL opens and pings the database addressed by connURL. The driver is
// taken from the URL scheme.
func ConnectSQL(ctx context.Context, connURL string) (*sql.DB, error) {
	u, err := dburl.Parse(connURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing SQL connection url: %w", err)
	}

	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, fmt.Errorf("error opening SQL database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to SQL database %s (ping failed): %w", u.Redacted(), err)
	}
	return db, nil
}

func ConnectMongo(ctx context.Context, connString string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, fmt.Errorf("error creating MongoDB client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, fmt.Errorf("error connecting to MongoDB (ping failed): %w", err)
	}
	return client, nil
}
