// internal/app/system/txn/txn.go

// Package txn provides a scoped multi-document transaction helper for
// MongoDB. Every exit path of the callback either commits or aborts the
// transaction; panics abort via the driver's session teardown.
//
// Standalone mongod instances (common in dev) do not support transactions.
// In that case the callback is re-run outside a transaction so the app keeps
// working, at the cost of atomicity across documents.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a MongoDB transaction. The context passed to
// fn carries the session, so any collection operation made through it joins
// the transaction. If fn returns an error the transaction is aborted and the
// error is returned unchanged.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		// Standalone server: the transactional attempt failed before any
		// write applied. Run the callback without a transaction.
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone mongod, or a driver/session
// mismatch). Matches both command error codes and message text, since the
// driver surfaces this differently across server versions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation variants for txn on standalone
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
