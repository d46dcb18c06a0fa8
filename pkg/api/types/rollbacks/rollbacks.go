package rollbacks

// request body reverting serving to the last checkpoint. The actor is
// taken from the caller's credential.
type Request struct {
	// a unit id, or "ALL" for every unit with a production history.
	Target string `json:"target"`
	Reason string `json:"reason"`
}
