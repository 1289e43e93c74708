// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"murmur/internal/middleware"
	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult reports which side of a toggle ran.
type ToggleResult string

const (
	// ToggleCreated means the relation row was absent and is now present.
	ToggleCreated ToggleResult = "created"
	// ToggleDeleted means the relation row was present and is now absent.
	ToggleDeleted ToggleResult = "deleted"
)

// toggleRow flips the presence of a unique relation row. The insert uses
// ON CONFLICT DO NOTHING so two concurrent toggles on the same key cannot both
// create a row: the loser sees zero rows affected and converges to the delete
// branch. A delete that matches nothing means a concurrent delete already won;
// the final state is still absent, so that also reports ToggleDeleted.
//
// relation labels the metrics counter; row must carry the unique pair, and
// deleteScope must select exactly that pair.
func toggleRow(ctx context.Context, db *gorm.DB, relation string, row any, deleteScope func(*gorm.DB) *gorm.DB) (ToggleResult, error) {
	ins := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if ins.Error != nil {
		return "", models.NewInternalError(ins.Error)
	}
	if ins.RowsAffected > 0 {
		return ToggleCreated, nil
	}

	del := deleteScope(db.WithContext(ctx))
	if del.Error != nil {
		return "", models.NewInternalError(del.Error)
	}
	if del.RowsAffected == 0 {
		// Lost a delete race; the other toggle removed the row first.
		middleware.ToggleRaces.WithLabelValues(relation).Inc()
	}
	return ToggleDeleted, nil
}
