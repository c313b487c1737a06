package models

// All returns every model the database is migrated with, parents first
func All() []any {
	return []any{
		&Recording{},
		&Note{},
		&ProcessingRun{},
	}
}
