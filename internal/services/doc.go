// Package services defines the [ContactStore] interface for the remote contact store and implements it over HTTP.
//
// # HTTP Surface
//
// [HTTPContactStore] consumes the following resource, relative to a configured base URL:
//
//	GET    /contacts/                      list      {results: Contact[], next?}
//	GET    /contacts/{id}/                 get       Contact
//	POST   /contacts/                      create    Contact
//	PUT    /contacts/{id}/                 update    Contact
//	DELETE /contacts/{id}/                 delete    status only
//	POST   /contacts/reorder/              reorder   status only
//	GET    /contacts/search_contact/?q=    search    Contact[]
//
// List responses may be paginated; the client follows next links until exhausted.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrRemoteUnavailable] : transport failure, non-2xx status, or malformed body
//   - [shared.ErrNotFound] : 404 on a request addressing a single contact
//
// # Request Metadata
//
// Every request carries an X-Request-ID header so store logs can be correlated with client logs.
// Outgoing requests are optionally throttled by a token bucket ([rate.Limiter]).
package services
