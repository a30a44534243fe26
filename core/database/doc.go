// Package database handles the MySQL connection.
//
// It provides a wrapper around GORM to configure the connection from the
// application's configuration: encoded credentials in the DSN, connection
// pool limits and an initial ping with a timeout.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
