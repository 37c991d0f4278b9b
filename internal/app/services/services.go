// Package services holds the business logic of the portal.
//
// Services defined in this package:
//   - IdentityResolver: finds the credential record behind a login or a session
//   - AuthService: login and the session profile
//   - AccountService: creates and updates students, teachers and parents
//   - LectureSummaryService: upload, listing, publishing and editing of lecture summaries
//   - EnrichmentService: merges transcription output into stored summaries
package services
