// Package server provides the HTTP surface of the reference contact store.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on [http.ServeMux].
//
// # Contacts Resource
//
// [ContactHandler] serves, on top of a repository:
//
//	GET    /contacts/                      {count, next, previous, results}; ?limit=&offset= paginate
//	POST   /contacts/                      201 Contact
//	GET    /contacts/{id}/                 Contact
//	PUT    /contacts/{id}/                 Contact
//	DELETE /contacts/{id}/                 204
//	POST   /contacts/reorder/              204; body [{id, order}]
//	GET    /contacts/search_contact/?q=    Contact[]
//
// Errors are JSON bodies of the form {"detail": "..."}: 400 for malformed or invalid input,
// 404 for missing contacts, 500 otherwise.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
