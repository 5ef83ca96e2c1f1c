// Package gate decides whether a user may run a generation and charges the
// free quota for completed ones. Subscribers bypass the counter entirely;
// everyone else gets a fixed number of free generations.
package gate
