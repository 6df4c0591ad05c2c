// Package services contains application services for the lphoto client
// that combine the API client with local persistence: keeping the session
// cookies across runs and reading the upload journal.
package services
