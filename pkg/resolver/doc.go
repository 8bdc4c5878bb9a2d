// Package resolver turns a best-effort layout fetch into a guaranteed-valid
// render plan. Invalid descriptors are dropped and reported as diagnostics;
// a failed, timed out, or malformed fetch is replaced by a configurable
// default layout and flagged as degraded. The resolver never retries and never
// caches.
package resolver
