package domain

type Decision int

const (
	Deny Decision = iota
	Allow
)

// Authorize allows only the listing's owner to mutate it.
func Authorize(actor Actor, listing *Listing) Decision {
	if listing == nil || actor.ID == "" {
		return Deny
	}
	if actor.ID != listing.OwnerID {
		return Deny
	}
	return Allow
}
