/*
Package errors implements the error classification used by every fiva
actor and by the node.

Each failure must wrap one of the root errors registered in this package (or
registered by an extension with Register). Root errors carry an ABCI code so
that a node can report them to clients without leaking internal details.

Use ErrXyz.New and ErrXyz.Newf at the point of creation, or Wrap/Wrapf when
adding context to an error returned from a lower layer. Both attach a stack
trace once, at the innermost frame, so that "%+v" formatting can print it.

The protocol taxonomy maps onto the root errors as follows:

  authentication failure  ErrUnauthorized
  insufficient value      ErrInsufficientValue
  invariant violation     ErrInvariant
  unknown caller          ErrUnknownCaller
*/
package errors
