package fiva

// StateInit carries everything needed to deploy a contract on its first
// message: the code reference and the initial data. The address of a
// contract is fully determined by its StateInit.
type StateInit struct {
	Code string
	Data []byte
}

// Address returns the deterministic address of the contract deployed with
// this StateInit.
func (s StateInit) Address() Address {
	return NewCondition("init", s.Code, s.Data).Address()
}

// Message is an internal message exchanged between actors. Value is the
// amount of native coins attached to it.
type Message struct {
	From  Address
	To    Address
	Value Coins
	// Bounce requests the runtime to send the message back when the
	// receiver fails to process it.
	Bounce bool
	// Bounced is set on messages returned by the runtime after a failure.
	Bounced bool
	Body    []byte
	// Init, when set, deploys the receiver if it does not exist yet.
	Init *StateInit
	// CarryValue attaches whatever is left of the inbound value after the
	// compute fee and all other outgoing values. Value is ignored.
	CarryValue bool
}

// Result is returned by contracts after processing a message.
type Result struct {
	// Messages are sent in order once the processing succeeded.
	Messages []Message
	// Log is a human readable note, it never influences state.
	Log string
}

// Contract is the code shared by every actor deployed with the same code
// reference. Each actor has its own isolated store.
type Contract interface {
	// Init is called once, when the actor is deployed.
	Init(ctx Context, db KVStore, data []byte) error
	// Receive processes a single internal message to completion.
	Receive(ctx Context, db KVStore, msg Message) (*Result, error)
	// Get runs a read only getter.
	Get(ctx Context, db ReadOnlyKVStore, method string, args []byte) ([]byte, error)
}

// ExternalReceiver is implemented by contracts that accept messages coming
// from outside of the network. Such messages carry no value and no sender,
// so the contract must authenticate them itself.
type ExternalReceiver interface {
	ReceiveExternal(ctx Context, db KVStore, body []byte) (*Result, error)
}
