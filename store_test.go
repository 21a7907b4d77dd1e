package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPostgresStoreUnreachableIsConnectionError(t *testing.T) {
	store, err := NewPostgresStore(DBConfig{Name: "none", User: "none", Host: "127.0.0.1", Port: "1"})
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = store.ListExpenses(ctx)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err=%v want *ConnectionError", err)
	}
	if connErr.Host != "127.0.0.1:1" {
		t.Fatalf("host=%q", connErr.Host)
	}

	if err := store.DeleteExpense(ctx, 1); !errors.As(err, &connErr) {
		t.Fatalf("delete err=%v want *ConnectionError", err)
	}
	if err := store.Ping(ctx); !errors.As(err, &connErr) {
		t.Fatalf("ping err=%v want *ConnectionError", err)
	}
}
