// Package session coordinates a user's view of the knowledge base.
//
// # Overview
//
// A Session owns three things: the active topic tab, a per-category Cache
// of QA and reading entries, and a Loading coordinator that keeps at most
// one fetch in flight per category.
//
// # Fetch Discipline
//
// Categories load lazily. Start loads the active tab in the foreground and
// the rest in the background, on a context that outlives the caller's.
// Switching to a cached tab serves the cache immediately, stale or not;
// once the staleness window (default five minutes) has passed, the switch
// also kicks off a background refetch. Only a never-fetched category makes
// the switch wait on the network.
//
// # Mutation Discipline
//
// Writes go to the server first. Only the server's result is patched into
// the cache (prepend on create, replace on update, filter on delete);
// there are no optimistic updates to roll back. When the startup probe
// fails, the session runs in local mode and mutations apply to the cache
// directly with locally generated IDs.
//
// # Search
//
// Search runs over the cached union of all categories and never triggers
// a fetch. An uncached category simply contributes nothing.
package session
