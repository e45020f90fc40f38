package fiva_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUnixTime(t *testing.T) {
	Convey("maturity in genesis and messages", t, func() {
		var got struct {
			Maturity fiva.UnixTime `json:"maturity"`
		}

		Convey("seconds are read as is", func() {
			So(json.Unmarshal([]byte(`{"maturity": 1772323200}`), &got), ShouldBeNil)
			So(got.Maturity, ShouldEqual, fiva.UnixTime(1772323200))
		})

		Convey("dates are read in any zone", func() {
			So(json.Unmarshal([]byte(`{"maturity": "2026-03-01T02:00:00+02:00"}`), &got), ShouldBeNil)
			So(got.Maturity, ShouldEqual, fiva.UnixTime(1772323200))
			So(got.Maturity.String(), ShouldEqual, "2026-03-01T00:00:00Z")
		})

		Convey("bad input is rejected", func() {
			for _, raw := range []string{`{"maturity": -5}`, `{"maturity": "next march"}`, `{"maturity": true}`} {
				err := json.Unmarshal([]byte(raw), &got)
				So(errors.ErrInput.Is(err), ShouldBeTrue)
			}
		})
	})

	Convey("arithmetic keeps whole seconds", t, func() {
		start := fiva.AsUnixTime(time.Date(2026, time.March, 1, 0, 0, 0, 999, time.UTC))
		So(start.Time(), ShouldResemble, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
		So(start.Add(1500*time.Millisecond), ShouldEqual, start+1)
		So(fiva.UnixTime(0).IsZero(), ShouldBeTrue)
		So(start.IsZero(), ShouldBeFalse)
	})
}
