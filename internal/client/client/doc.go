// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. The photo service contract (Client) covering checkAuth, list, signin,
//     signup, confirmSignup and requestUpload, plus the byte transfer to a
//     granted upload target.
//  2. An HTTP implementation (HTTPClient) that speaks the JSON envelope
//     {responseCode, data} and keeps the session cookies in a jar.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Refusals are not errors: a decoded envelope is returned whatever its
// responseCode. Only transport failures produce errors, wrapping
// ErrUnavailable, ErrUnexpectedStatus or ErrMalformedResponse for errors.Is.
// Nothing here retries.
package client
