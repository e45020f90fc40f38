/*
Package fiva defines the common interfaces that tie together the yield
tokenization actors, the runtime delivering their messages and the node, as
well as implementations of some of the simpler components (when interfaces
would be too much overhead).

Every actor (a contract in this package's vocabulary) owns an isolated key
value space and processes one message at a time. Actors never share memory;
they coordinate by returning further messages from Receive, which the runtime
delivers asynchronously.

We pass context through context.Context between the node, the runtime and
the contracts. To do so, fiva defines some common keys to store info, such as
block time and the executing contract address. There should exist two
functions for every XYZ of type T that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package fiva
