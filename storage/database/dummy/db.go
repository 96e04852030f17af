package dummydb

import (
	"sync"

	"github.com/trezcool/bulletin/core/grading"
)

type (
	DB struct {
		grading *gradingTables
	}

	gradingTables struct {
		sync.RWMutex
		subjects []grading.SubjectMeta
		grades   []grading.GradeEntry // insertion order
	}
)

func Open() (*DB, error) {
	db := &DB{
		grading: &gradingTables{},
	}
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.grading.Lock()
	defer db.grading.Unlock()
	db.grading.subjects = nil
	db.grading.grades = nil
}
