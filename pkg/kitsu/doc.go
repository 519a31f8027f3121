// Package kitsu is a JSON:API client for the Kitsu API and any server that
// follows the same conventions.
//
// # Overview
//
// A Client turns terse model identifiers into requests. Names are cased and
// pluralised the same way for URLs and for the type written into request
// bodies, responses are flattened into jsonapi.Entity values, and every
// failure comes back as a single *Error.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/mklemme/kitsu/pkg/jsonapi"
//	  "github.com/mklemme/kitsu/pkg/kitsu"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  api, err := kitsu.New(&kitsu.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  // GET https://kitsu.io/api/edge/library-entries?page%5Blimit%5D=5
//	  res, err := api.Get(ctx, "libraryEntries", jsonapi.Params{
//	    "page": map[string]any{"limit": 5},
//	  }, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = res.Many()
//	}
//
// # Model identifiers
//
// Get accepts "anime", "anime/1" and "anime/1/episodes": the first segment is
// cased and pluralised, the id passes through, and the relationship is cased
// only. Patch, Post and Delete transform only the last segment, so
// "users/1/libraryEntries" posts to users/1/library-entries with type
// "libraryEntries".
//
// # Errors
//
// Errors caused by the arguments of a call (ErrModelRequired, ErrIDRequired,
// ErrBodyRequired) are returned before any request is sent. Everything else
// is an *Error whose Kind tells a failed response from a failed round trip
// or an undecodable body. IsNotFound, IsUnauthorized and IsForbidden branch
// on common statuses.
//
// # Interceptors
//
// Config.Interceptors hooks into every request and response. Config.AccessToken
// installs AuthenticationInterceptor. Config.Debug with a Logger traces each
// round trip once: the default transport logs it, and a custom Transport gets
// the logging interceptors instead.
package kitsu
