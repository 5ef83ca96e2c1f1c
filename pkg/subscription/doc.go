// Package subscription tracks Stripe subscription state per user and answers
// the entitlement question: does this user currently hold a valid paid
// subscription?
//
// Subscription rows are written exclusively by the Stripe webhook flow
// (checkout completion and invoice payment); the rest of the service only
// reads them. Expiry is time-based: rows are never deleted, a subscription
// simply stops being valid once its period end passes.
package subscription
