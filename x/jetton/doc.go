/*
Package jetton implements a reference fungible token: a minter contract
that issues the token and one wallet contract per holder.

Wallets are never created explicitly. Every message that moves tokens to a
wallet carries the wallet StateInit, so the runtime deploys it on first
use. Balances only change through internal_transfer between wallets of the
same minter, and every failed hop is compensated when its bounce comes
back.
*/
package jetton
