package client

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/tendermint/tendermint/abci/example/kvstore"
	nm "github.com/tendermint/tendermint/node"
	rpctest "github.com/tendermint/tendermint/rpc/test"
)

// node is shared by all tests of the package. It runs the kvstore example
// application, the client does not depend on what the application does
// with transactions.
var node *nm.Node

func getChainID() string {
	return rpctest.GetConfig().ChainID()
}

func TestMain(m *testing.M) {
	config := rpctest.GetConfig()
	config.Moniker = "FivaClientTest"
	// index every tag so that app.key can be searched
	config.TxIndex.IndexTags = ""
	config.TxIndex.IndexAllTags = true

	node = rpctest.StartTendermint(kvstore.NewKVStoreApplication())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	h, err := NewClient(NewLocalConnection(node)).WaitForNextBlock(ctx)
	cancel()

	code := 1
	if err != nil {
		fmt.Printf("tendermint did not produce a block: %s\n", err)
	} else {
		fmt.Printf("tendermint running at height %d\n", h.Height)
		code = m.Run()
	}

	node.Stop()
	node.Wait()
	os.Exit(code)
}

func timeoutCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
