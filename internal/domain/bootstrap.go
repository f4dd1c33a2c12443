package domain

// Profile carries the caller's identity fields handed to the remote
// agent once per session.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

// FullName joins the name parts, tolerating either being empty.
func (p Profile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Dispute is the free-form transactional record of the case being
// discussed. All fields are optional.
type Dispute struct {
	Last4    string  `json:"last4"`
	TxnDate  string  `json:"txn_date"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Merchant string  `json:"merchant"`
	Reason   string  `json:"reason"`
	Summary  string  `json:"summary"`
}

// IsZero reports whether no dispute field was filled in.
func (d Dispute) IsZero() bool {
	return d == Dispute{}
}

// BootstrapPayload is the one-shot context handoff published on the
// bootstrap topic right after the session connects.
type BootstrapPayload struct {
	Profile Profile  `json:"profile"`
	Dispute *Dispute `json:"dispute,omitempty"`
}
