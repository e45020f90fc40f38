/*
Package chain implements the actor runtime that delivers internal messages
between contracts.

Every contract instance owns a private key space inside the application
store, an account holding its native balance and the code reference it was
deployed with. Messages are processed one at a time in FIFO order. Each one
runs inside its own cache wrap: a failure discards every write of that
message and, when requested, bounces the attached value back to the sender.
Contracts are deployed lazily by the first message that carries their
StateInit.
*/
package chain
