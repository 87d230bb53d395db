// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain records to keep the domain layer free from ORM
// concerns. Mappers convert between domain records and persistence models.
package models
