// Package client talks to the gigbook remote API over HTTP.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     SignUp/Login/Refresh/Logout/Me, Ping, and the show log endpoints.
//  2. A concrete HTTP implementation (see HTTPClient) whose RoundTripper
//     attaches the bearer token from the credential store and, on a 401,
//     refreshes the token pair once and replays the request once.
//  3. Base URL resolution for the production, development, emulator and
//     physical device environments (see ResolveBaseURL).
//
// # Refresh protocol
//
// Concurrent 401s share one in-flight refresh call. A request whose bearer
// was already rotated by another caller is replayed with the current token
// without refreshing again. A failed refresh purges the access, refresh and
// legacy token keys and the original 401 is returned to the caller. The
// replayed request is never refreshed a second time.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError, which unwraps to one of the
// sentinels in internal/common: ErrValidation (400, 422), ErrUnauthorized
// (401, 403), ErrNotFound (404), ErrDuplicate (409) and ErrServer (5xx).
// Transport failures wrap common.ErrUnavailable.
//
// All operations accept context.Context; the underlying http.Client also
// carries a fixed timeout so a hung server never blocks a caller forever.
package client
