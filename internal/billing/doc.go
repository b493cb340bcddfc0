// Package billing links local users to the payment provider: it creates
// hosted checkout and portal sessions and reconciles the provider's webhook
// event stream onto the user's subscription status.
//
// The state machine, keyed by event type:
//
//	checkout.session.completed  -> trialing (sets subscription id + trial end)
//	invoice.paid                -> active
//	invoice.payment_failed      -> past_due
//	customer.subscription.deleted -> canceled
//
// Webhook signature verification is the sole trust boundary for these
// transitions. Each transition is a plain overwrite and therefore idempotent;
// unknown events and lookup misses are acknowledged without effect so the
// provider does not retry spuriously.
package billing
