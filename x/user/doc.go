/*
Package user implements the User sub-ledger: one contract per depositor and
market, addressed deterministically from the Master and the owner.

A Position records every deposit batch as a SupplyRecord and the index and
maturity snapshot taken at the first deposit since the Position was last
drained. Redemptions forwarded by the Master are checked against the
outstanding legs, paid out according to the accrual rules and settled back
to the Master.
*/
package user
