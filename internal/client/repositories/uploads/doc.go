// Package uploads is the local journal of upload attempts.
//
// Every attempt made by the upload workflow is recorded with its current
// status. Rows are never deleted: the journal backs the history command and
// lets the user find targets that were granted by the server but never
// consumed (status "orphaned").
//
//	repo := uploads.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, attempt)
//	_ = repo.UpdateStatus(ctx, attempt.ID, uploads.Update{Status: models.AttemptTransferring, TargetURL: url})
//	orphans, _ := repo.ListByStatus(ctx, models.AttemptOrphaned)
package uploads
