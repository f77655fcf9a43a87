package repository

import (
	"errors"
	"time"

	"safeher/apperrors"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

const opTimeout = 10 * time.Second

// findErr maps a driver error from a single-document read.
func findErr(err error, collection, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("%s not found", what)
	}
	utils.TrackError("database", collection+"_lookup_failed")
	return apperrors.Persistence(err, "failed to load "+what)
}

func writeErr(err error, collection, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("%s already exists", collection)
	}
	utils.TrackError("database", collection+"_"+action+"_failed")
	return apperrors.Persistence(err, "failed to "+action+" "+collection)
}

func readErr(err error, collection string) error {
	utils.TrackError("database", collection+"_query_failed")
	return apperrors.Persistence(err, "failed to query "+collection)
}
