package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

// Example will be written out to a file, .json and .bin
// Filename should have no path and no extension
type Example struct {
	Filename string
	Obj      proto.Message
}

// TestGenCmd writes the json and binary encodings of the given objects so
// that clients can test their decoders against them.
func TestGenCmd(examples []Example, args []string) error {
	outdir := "testdata"
	if len(args) > 0 {
		outdir = args[0]
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	for _, ex := range examples {
		js, err := json.MarshalIndent(ex.Obj, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "json %s", ex.Filename)
		}
		if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".json"), js, 0644); err != nil {
			return err
		}

		bin, err := orm.Marshal(ex.Obj)
		if err != nil {
			return errors.Wrapf(err, "binary %s", ex.Filename)
		}
		if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".bin"), bin, 0644); err != nil {
			return err
		}
	}
	return nil
}
