// Package services contains server-side business logic: sign-in, key
// custody, vault access control, vault and image metadata. Services depend on
// repositories through repomanager.RepositoryManager and on the ledger and
// blob store through their interfaces.
//
// Authorization is the trust boundary for content keys. Wrapped keys are
// sealed under a password derived from the owner's public address, so the
// checks in CustodyService are what keep them confidential.
package services

import "time"

// now is the clock used for request-side validation. Grant expiry filtering
// itself uses the database clock.
var now = time.Now
