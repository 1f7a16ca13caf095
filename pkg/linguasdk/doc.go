/*
Package linguasdk is a Go client for the Lingua HTTP API.

Unauthenticated calls go through a Client. Logging in returns a copy of the
client that sends the session token on every request:

	c := linguasdk.NewClient("http://localhost:8080")

	sess, _, err := c.Login(ctx, linguasdk.LoginRequest{Username: "ana", Password: pw})
	if errors.Is(err, linguasdk.ErrMFARequired) {
		sess, _, err = c.Login(ctx, linguasdk.LoginRequest{Username: "ana", Password: pw, Code: otp})
	}

	due, err := sess.DueCards(ctx, 20)

# Errors

Every non-2xx response is returned as an *APIError. The predefined errors
match with errors.Is on status code and error code:

	if errors.Is(err, linguasdk.ErrNotFound) { ... }

The same APIError values are written by the server, so both sides agree on
the wire format.

# Offline sync

Clients queue operations while offline and push them in one batch. Every op
carries a client-generated op_id; pushing the same op twice is safe and the
second push reports Replayed. After pushing, pull with the cursor from the
previous pull; the feed includes the pushed writes and any made elsewhere:

	res, err := sess.Sync(ctx, ops)
	changes, err := sess.Changes(ctx, lastCursor)
	lastCursor = changes.Cursor
*/
package linguasdk
