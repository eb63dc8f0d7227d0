/*
Package backofficesdk is a client for the ELMA back-office API.

A Client covers the unauthenticated endpoints and opens Sessions:

	client := backofficesdk.NewClient("https://backoffice.elma.example")

	// One-time setup of the first general manager
	boot, err := client.Bootstrap(ctx, token, backofficesdk.BootstrapRequest{...})

	// Log in with a username or an email address
	session, err := client.Login(ctx, "gm", "correct horse battery")

A Session carries the bearer token for everything else:

	invite, err := session.IssueInvite(ctx, 24)
	change, err := session.SetRole(ctx, userID, "manager", true)
	entries, err := session.AuditLog(ctx, 1)

Sessions do not refresh themselves. Log in again once ExpiresAt passes.

Non-2xx responses come back as *APIError. Use HasCode to branch on the
error code:

	if backofficesdk.HasCode(err, backofficesdk.ErrorCodeSelfModification) {
		...
	}
*/
package backofficesdk
