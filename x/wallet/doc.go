/*
Package wallet implements the account contract that external users control
with an ed25519 key.

A wallet is the only way for somebody outside of the network to move value
or talk to other contracts. The owner signs an order listing up to
MaxMessages internal messages and submits it as an external message. The
wallet checks the signature and the sequence number, then sends the
messages paying their value from its own balance.

Signatures commit to the chain id, so an order signed for one network is
never valid on another.
*/
package wallet
