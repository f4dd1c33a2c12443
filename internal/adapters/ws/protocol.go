package ws

// envelope is the single JSON frame exchanged with the room service.
// Type selects which fields are meaningful, the same dispatch style the
// room side uses:
//
//	client → room: join, data, offer, candidate, leave
//	room → client: room_state, member_joined, member_left, data, ack,
//	               answer, candidate, error
type envelope struct {
	Type string `json:"type"`

	// join / room_state
	AutoSubscribe bool     `json:"auto_subscribe,omitempty"`
	Self          string   `json:"self,omitempty"`
	Participants  []string `json:"participants,omitempty"`

	// member_joined / member_left
	ID string `json:"id,omitempty"`

	// data (Payload marshals as base64)
	From     string `json:"from,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Reliable bool   `json:"reliable,omitempty"`
	Payload  []byte `json:"payload,omitempty"`

	// ack / error correlation for reliable publishes
	Seq uint64 `json:"seq,omitempty"`

	// offer / answer
	SDP string `json:"sdp,omitempty"`

	// candidate
	Candidate     string `json:"candidate,omitempty"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`

	Error string `json:"error,omitempty"`
}

const (
	typeJoin         = "join"
	typeRoomState    = "room_state"
	typeMemberJoined = "member_joined"
	typeMemberLeft   = "member_left"
	typeData         = "data"
	typeAck          = "ack"
	typeOffer        = "offer"
	typeAnswer       = "answer"
	typeCandidate    = "candidate"
	typeLeave        = "leave"
	typeError        = "error"
)
