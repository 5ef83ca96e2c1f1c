// Package auth validates Clerk-issued session JWTs and resolves the
// authenticated user ID for downstream handlers.
//
// Identity is resolved once by the middleware and passed down explicitly:
// every service below the HTTP layer takes the user ID as an argument rather
// than reading an ambient session.
package auth
