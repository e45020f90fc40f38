/*
Package protocol defines the wire surface of the yield tokenization
market: the opcodes, one Go type per message body and the signed envelope
of administrative commands.

Every body starts with a 32 bit opcode and a 64 bit query id, followed by
the fields of the message in declaration order. Protocol opcodes are the
crc32 checksum of their name. Jetton opcodes use the numeric tags of the
fungible token standard.
*/
package protocol

import (
	"fmt"
	"hash/crc32"
)

// Op is a 32 bit operation tag.
type Op uint32

// OpFromName returns the opcode derived from an operation name.
func OpFromName(name string) Op {
	return Op(crc32.ChecksumIEEE([]byte(name)))
}

// Protocol opcodes.
var (
	OpDeposit            = OpFromName("deposit")
	OpSupply             = OpFromName("supply")
	OpDump               = OpFromName("dump")
	OpDumpReply          = OpFromName("dump_reply")
	OpUpdateIndex        = OpFromName("update_index")
	OpRedeem             = OpFromName("redeem")
	OpRedeemNotification = OpFromName("redeem_notification")
	OpRedeemSettlement   = OpFromName("redeem_settlement")
	OpUpdateWalletAddr   = OpFromName("update_wallet_addr")
	OpSetPTMinter        = OpFromName("set_pt_minder_addr")
	OpSetYTMinter        = OpFromName("set_yt_minder_addr")
)

// Jetton opcodes.
const (
	OpTransfer             Op = 0x0f8a7ea5
	OpTransferNotification Op = 0x7362d09c
	OpInternalTransfer     Op = 0x178d4519
	OpExcesses             Op = 0xd53276db
	OpBurn                 Op = 0x595f07bc
	OpBurnNotification     Op = 0x7bdd97de
	OpProvideWalletAddress Op = 0x2c76b973
	OpTakeWalletAddress    Op = 0xd1735400
	OpMint                 Op = 0x15
)

// BounceTag prefixes the body of every bounced message.
const BounceTag uint32 = 0xffffffff

var opNames = map[Op]string{}

func init() {
	for _, name := range []string{
		"deposit", "supply", "dump", "dump_reply", "update_index", "redeem",
		"redeem_notification", "redeem_settlement", "update_wallet_addr",
		"set_pt_minder_addr", "set_yt_minder_addr",
	} {
		op := OpFromName(name)
		if other, ok := opNames[op]; ok {
			panic(fmt.Sprintf("opcode collision: %s and %s", name, other))
		}
		opNames[op] = name
	}
	for op, name := range map[Op]string{
		OpTransfer:             "transfer",
		OpTransferNotification: "transfer_notification",
		OpInternalTransfer:     "internal_transfer",
		OpExcesses:             "excesses",
		OpBurn:                 "burn",
		OpBurnNotification:     "burn_notification",
		OpProvideWalletAddress: "provide_wallet_address",
		OpTakeWalletAddress:    "take_wallet_address",
		OpMint:                 "mint",
	} {
		if other, ok := opNames[op]; ok {
			panic(fmt.Sprintf("opcode collision: %s and %s", name, other))
		}
		opNames[op] = name
	}
}

// String returns the operation name, or the hex tag of unknown ops.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(o))
}
