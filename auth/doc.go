// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth is the identity oracle: it issues and verifies the tokens
that tell the ledger who is calling.

# Identity Tokens

Tokens bind an identity to this deployment with HMAC-SHA256:

	token, err := auth.IssueIdentityToken("alice", salt)
	identity, err := auth.VerifyIdentityToken(token, salt)

The format is <identity>.<signature>, with the signature URL-safe base64
encoded without padding. Verification is deterministic, so no token is
ever stored. Identities may contain dots; the signature never does.

The ledger trusts whatever identity a valid token carries. Issuing
tokens to real users (login, key management) happens outside this
service.

# ID Generation

Random hex IDs for polls created without an explicit id:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
