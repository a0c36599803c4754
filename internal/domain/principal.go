package domain

// Principal is the authenticated caller as asserted by the upstream auth
// collaborator. The core trusts it and never reads identity from ambient
// state.
type Principal struct {
	RequesterID int64
	Admin       bool
}
