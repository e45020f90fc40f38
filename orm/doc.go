/*
Package orm provides an easy to use db wrapper

Models are plain Go structs with protobuf field tags. They are serialized
with the gogo protobuf reflection codec, so no code generation step is
needed. A ModelBucket stores models of one type under a common key prefix
and a Sequence hands out increasing identifiers.
*/
package orm
