// Package usage persists the free-tier generation counter.
//
// Each user has at most one record; the count only grows. A record is created
// implicitly on the first recorded generation, never on read: callers treat
// an absent record as count zero.
package usage
