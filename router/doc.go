// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the notetally API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cfg)

# Endpoints

Public:

	GET  /health - Liveness and database ping
	GET  /       - Version banner
	POST /login  - Start a session

Session required (X-Session-Token or Authorization: Bearer):

	POST /logout                           - End the session
	GET  /me                               - Current user
	GET  /records                          - Record list
	GET  /records/{bib}                    - Record detail
	GET  /navigate/start-unclassified      - First record with an unvoted note
	GET  /navigate/{bib}/next-unclassified - Next record with an unvoted note
	GET  /navigate/{bib}/next-pending      - Next record the caller has not finished
	GET  /navigate/{bib}/next-unknown      - Next record with an unknown consensus
	POST /vote                             - Vote on one note
	POST /vote-identical                   - Vote on every note with the same text
	GET  /filters/unknown                  - Notes with an unknown consensus
	GET  /filters/contentious              - Contentious notes
	GET  /filters/pending                  - Notes the caller has not voted on

Admin only:

	GET    /admin/dashboard - Totals and activity
	GET    /admin/settings  - Current settings
	PUT    /admin/settings  - Update settings
	POST   /admin/import    - XML upload
	GET    /admin/export    - XML download
	DELETE /admin/data      - Remove records, notes and votes

All routes except /health and / are wrapped in middleware.WithLogging.
*/
package router
