/*
Package master implements the Master ledger of a yield tokenization market.

The Master accepts underlying deposits from its own underlying wallet,
records them in the User sub-ledger of the holder and mints the same amount
of principal (PT) and yield (YT) tokens. Redemptions arrive as PT or YT
transfers to the Master, are forwarded to the User of the holder together
with the current index and settled when the User replies. The index and the
minter addresses are maintained by signed administrative commands delivered
as external messages.

The Master never iterates Users. Their addresses are derived from the
Master address and the owner.
*/
package master
