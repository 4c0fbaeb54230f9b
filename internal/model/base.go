package model

import "github.com/google/uuid"

// assignID gives a new row its primary key in Go so the same models work on
// postgres and on the sqlite databases used by the tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
