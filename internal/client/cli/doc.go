// Package cli provides the interactive lphoto command-line client.
//
// It wires configuration, the local database, the API client and the
// client components (session gate, signin and confirmation flows, upload
// workflow, listing) into a REPL. Each view of the client is a REPL mode
// with its own commands:
//
//	signin         signin, signup, confirm
//	confirmSignup  confirm, back
//	main           list, show, upload, history, orphans, whoami, logout
//	upload         select, describe, status, send, cancel
//
// Component state lives on an event loop; commands post work to it and wait
// for the loop to settle before printing results and alerts. The REPL is
// started via App.Run(ctx), which blocks until the user exits.
package cli
