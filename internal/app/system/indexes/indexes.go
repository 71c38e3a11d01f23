// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.

The unique (mentee_id, opportunity_id) index on assignments is load-bearing:
it is what closes the race between concurrent duplicate applications. The
engine relies on the insert failing, not on a prior existence check.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureAssignments(ctx, db); err != nil {
		problems = append(problems, "assignments: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}
	if err := ensureOpportunities(ctx, db); err != nil {
		problems = append(problems, "opportunities: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// ensureIndexSet creates each desired index, reusing an existing index when
// one with the same key pattern is already present. Option drift (e.g. a
// uniqueness upgrade) is resolved by drop-and-recreate.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	type existingIndex struct {
		Name   string `bson:"name"`
		Key    bson.D `bson:"key"`
		Unique *bool  `bson:"unique,omitempty"`
	}

	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range desired {
		var name string
		wantUnique := false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			if m.Options.Unique != nil {
				wantUnique = *m.Options.Unique
			}
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			haveUnique := ex.Unique != nil && *ex.Unique
			if haveUnique == wantUnique {
				continue // already in place
			}
			// Options mismatch: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", wantUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureAssignments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("assignments")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one assignment per (mentee, opportunity). Enforced here,
		// not in application logic, to close concurrent-create races.
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "opportunity_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_assign_mentee_opportunity"),
		},
		// Mentor dashboards: list a mentor's assignments segmented by status.
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_assign_mentor_status_created"),
		},
		// Mentee history (latest-first).
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_assign_mentee_created"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("notifications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-user inbox (latest-first).
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notif_user_created"),
		},
		// Unread badge counts.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}},
			Options: options.Index().SetName("idx_notif_user_read"),
		},
		// Status patches on denormalized assignment notifications.
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "payload.assignment_id", Value: 1}},
			Options: options.Index().SetName("idx_notif_type_assignment"),
		},
	})
}

func ensureOpportunities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("opportunities")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Mentor's offered opportunities.
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("idx_opp_mentor_start"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
}
